// Package roulette distribui leads entre corretores presentes na loja.
//
// O estado em memória é a fonte de verdade para concorrência. Ordem de
// locks: storeShard.mu -> brokerState.mu -> leadState.mu. O mutex do
// registro (Engine.mu) e o do ledger são folhas: nunca são mantidos
// enquanto outro lock é adquirido. Nenhum I/O acontece com lock: gravações
// vinculantes (check-in, captura) são em duas fases e o resto vai para o
// outbox, drenado por uma única goroutine.
package roulette
