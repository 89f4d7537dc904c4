// Package metrics expõe os contadores de domínio da roleta no Prometheus.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/xavierca1/lead-roulette/internal/entity"
	"github.com/xavierca1/lead-roulette/internal/roulette"
)

type Recorder struct {
	leadsIngested    *prometheus.CounterVec
	assignments      *prometheus.CounterVec
	requeues         *prometheus.CounterVec
	expirations      *prometheus.CounterVec
	captures         *prometheus.CounterVec
	rejections       *prometheus.CounterVec
	checkins         *prometheus.CounterVec
	checkouts        *prometheus.CounterVec
	noEligible       *prometheus.CounterVec
	waiting          *prometheus.GaugeVec
	present          *prometheus.GaugeVec
	handOffs         *prometheus.CounterVec
	integrationError *prometheus.CounterVec
}

var _ roulette.Recorder = (*Recorder)(nil)

// NewRecorder registra tudo em reg (prometheus.DefaultRegisterer em produção).
func NewRecorder(reg prometheus.Registerer) *Recorder {
	f := promauto.With(reg)
	return &Recorder{
		leadsIngested: f.NewCounterVec(prometheus.CounterOpts{
			Name: "roulette_leads_ingested_total",
			Help: "Leads accepted into a store queue",
		}, []string{"store", "hot"}),
		assignments: f.NewCounterVec(prometheus.CounterOpts{
			Name: "roulette_assignments_total",
			Help: "Leads assigned to a present broker",
		}, []string{"store"}),
		requeues: f.NewCounterVec(prometheus.CounterOpts{
			Name: "roulette_requeues_total",
			Help: "Assigned leads returned to the queue",
		}, []string{"store", "reason"}),
		expirations: f.NewCounterVec(prometheus.CounterOpts{
			Name: "roulette_leads_expired_total",
			Help: "Leads expired by TTL",
		}, []string{"store"}),
		captures: f.NewCounterVec(prometheus.CounterOpts{
			Name: "roulette_captures_total",
			Help: "Confirmed captures",
		}, []string{"store"}),
		rejections: f.NewCounterVec(prometheus.CounterOpts{
			Name: "roulette_capture_rejections_total",
			Help: "Rejected capture attempts",
		}, []string{"reason"}),
		checkins: f.NewCounterVec(prometheus.CounterOpts{
			Name: "roulette_checkins_total",
			Help: "Successful check-ins",
		}, []string{"store", "method"}),
		checkouts: f.NewCounterVec(prometheus.CounterOpts{
			Name: "roulette_checkouts_total",
			Help: "Check-outs, manual or forced",
		}, []string{"store", "reason"}),
		noEligible: f.NewCounterVec(prometheus.CounterOpts{
			Name: "roulette_no_eligible_broker_total",
			Help: "Dispatch rounds that found waiting leads but no eligible broker",
		}, []string{"store"}),
		waiting: f.NewGaugeVec(prometheus.GaugeOpts{
			Name: "roulette_waiting_leads",
			Help: "Leads waiting per store",
		}, []string{"store"}),
		present: f.NewGaugeVec(prometheus.GaugeOpts{
			Name: "roulette_present_brokers",
			Help: "Brokers checked in per store",
		}, []string{"store"}),
		handOffs: f.NewCounterVec(prometheus.CounterOpts{
			Name: "roulette_crm_handoffs_total",
			Help: "CRM hand-off results",
		}, []string{"status"}),
		integrationError: f.NewCounterVec(prometheus.CounterOpts{
			Name: "integration_errors_total",
			Help: "Total number of integration errors",
		}, []string{"service"}),
	}
}

func (r *Recorder) LeadEnqueued(storeID string, hot bool) {
	h := "false"
	if hot {
		h = "true"
	}
	r.leadsIngested.WithLabelValues(storeID, h).Inc()
}

func (r *Recorder) LeadAssigned(storeID string) { r.assignments.WithLabelValues(storeID).Inc() }

func (r *Recorder) LeadRequeued(storeID, reason string) {
	r.requeues.WithLabelValues(storeID, reason).Inc()
}

func (r *Recorder) LeadExpired(storeID string)     { r.expirations.WithLabelValues(storeID).Inc() }
func (r *Recorder) CaptureRecorded(storeID string) { r.captures.WithLabelValues(storeID).Inc() }
func (r *Recorder) CaptureRejected(reason string)  { r.rejections.WithLabelValues(reason).Inc() }

func (r *Recorder) CheckinRecorded(storeID string, method entity.CheckinMethod) {
	r.checkins.WithLabelValues(storeID, string(method)).Inc()
}

func (r *Recorder) CheckoutRecorded(storeID, reason string) {
	r.checkouts.WithLabelValues(storeID, reason).Inc()
}

func (r *Recorder) NoEligibleBroker(storeID string) { r.noEligible.WithLabelValues(storeID).Inc() }

func (r *Recorder) QueueDepth(storeID string, depth int) {
	r.waiting.WithLabelValues(storeID).Set(float64(depth))
}

func (r *Recorder) PresentBrokers(storeID string, count int) {
	r.present.WithLabelValues(storeID).Set(float64(count))
}

// HandOff conta o retorno do CRM (SENT, ERROR).
func (r *Recorder) HandOff(status entity.CaptureStatus) {
	r.handOffs.WithLabelValues(string(status)).Inc()
}

func (r *Recorder) IntegrationError(service string) {
	r.integrationError.WithLabelValues(service).Inc()
}
