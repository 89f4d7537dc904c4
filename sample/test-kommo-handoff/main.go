package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/xavierca1/lead-roulette/internal/infra/integration/kommo"
	"github.com/xavierca1/lead-roulette/internal/infra/logger"
)

// Envia um lead capturado fictício para o Kommo, como o consumidor faria.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("aviso: .env não encontrado, usando variáveis do sistema")
	}

	token := os.Getenv("KOMMO_API_TOKEN")
	if token == "" {
		log.Fatal("KOMMO_API_TOKEN deve estar configurado no .env")
	}
	statusID, _ := strconv.Atoi(os.Getenv("KOMMO_STATUS_ID"))

	client := kommo.NewClient(os.Getenv("KOMMO_BASE_URL"), token, statusID, logger.New("development", ""))

	input := kommo.HandOffInput{
		LeadID:      uuid.NewString(),
		Campaign:    "teste-manual",
		AdSet:       "adset-teste",
		IsHot:       true,
		StoreName:   "Paulista",
		BrokerName:  "Corretor Teste",
		BrokerEmail: "corretor.teste@email.com",
		ContactName: "Joao Teste da Silva",
		Phone:       "+556199767638",
		Email:       "joao.teste@email.com",
	}

	fmt.Printf("criando lead no Kommo: %s (%s)\n", input.ContactName, input.Campaign)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	leadID, err := client.CreateLead(ctx, input)
	if err != nil {
		log.Fatalf("erro ao criar lead no Kommo: %v", err)
	}

	accountID := os.Getenv("KOMMO_ACCOUNT_ID")
	if accountID == "" {
		accountID = "roleta"
	}
	fmt.Printf("lead #%d criado: https://%s.kommo.com/leads/detail/%d\n", leadID, accountID, leadID)
}
