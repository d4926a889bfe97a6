package http

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"lab-backend/internal/config"
	"lab-backend/internal/handlers"
	"lab-backend/internal/logger"
	"lab-backend/internal/metrics"
	"lab-backend/internal/middleware"
)

// NewRouter builds the API. Recovery, request logging and CORS wrap the
// whole router so preflight requests never reach route matching; the
// metrics middleware runs inside mux to see the route template.
func NewRouter(
	cfg *config.Config,
	log *logger.Logger,
	m *metrics.Metrics,
	gatherer prometheus.Gatherer,
	authHandler *handlers.AuthHandler,
	materialHandler *handlers.MaterialHandler,
	equipmentHandler *handlers.EquipmentHandler,
	maintenanceHandler *handlers.MaintenanceHandler,
	supplierHandler *handlers.SupplierHandler,
	alertHandler *handlers.AlertHandler,
	healthHandler *handlers.HealthHandler,
	authMiddleware *middleware.AuthMiddleware,
) http.Handler {
	r := mux.NewRouter()
	r.Use(middleware.Metrics(m))

	// Health endpoints (no auth required - for probes)
	r.HandleFunc("/health", healthHandler.BasicHealth).Methods("GET")
	r.HandleFunc("/health/ready", healthHandler.ReadinessHealth).Methods("GET")
	r.HandleFunc("/health/detailed", healthHandler.DetailedHealth).Methods("GET")

	// Metrics endpoint (Prometheus format)
	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})).Methods("GET")

	// Public API - Authentication
	r.HandleFunc("/login", authHandler.Login).Methods("POST")

	// Everything below goes through the JWT middleware
	api := r.NewRoute().Subrouter()
	api.Use(authMiddleware.Authenticate)

	api.HandleFunc("/usuarios/me", authHandler.Me).Methods("GET")
	api.HandleFunc("/usuarios/me/2fa", authHandler.SetupTOTP).Methods("POST")
	api.HandleFunc("/usuarios/me/2fa/confirmar", authHandler.ConfirmTOTP).Methods("POST")

	// Materials - fixed paths before /{id}
	api.HandleFunc("/materiais", materialHandler.List).Methods("GET")
	api.HandleFunc("/materiaisList", materialHandler.List).Methods("GET")
	api.HandleFunc("/materiais", materialHandler.Create).Methods("POST")
	api.HandleFunc("/materiais/vencidos", materialHandler.Expired).Methods("GET")
	api.HandleFunc("/materiais/stats", materialHandler.Stats).Methods("GET")
	api.HandleFunc("/materiais/valor-estoque", materialHandler.StockValue).Methods("GET")
	api.HandleFunc("/materiais/exportar-csv", materialHandler.ExportCSV).Methods("GET")
	api.HandleFunc("/materiais/relatorio-pdf", materialHandler.ReportPDF).Methods("GET")
	api.HandleFunc("/materiais/codigo/{codigo}", materialHandler.GetByCode).Methods("GET")
	api.HandleFunc("/materiais/{id:[0-9]+}", materialHandler.Get).Methods("GET")
	api.HandleFunc("/materiais/{id:[0-9]+}", materialHandler.Update).Methods("PUT")
	api.HandleFunc("/materiais/{id:[0-9]+}", materialHandler.Delete).Methods("DELETE")
	api.HandleFunc("/materiais/{id:[0-9]+}/baixa", materialHandler.Baixa).Methods("PATCH")
	api.HandleFunc("/materiais/{id:[0-9]+}/movimentacoes", materialHandler.Movements).Methods("GET")
	api.HandleFunc("/materiais/{id:[0-9]+}/fispq", materialHandler.FISPQ).Methods("GET")

	// Equipment
	api.HandleFunc("/equipamentos", equipmentHandler.List).Methods("GET")
	api.HandleFunc("/equipamentos", equipmentHandler.Create).Methods("POST")
	api.HandleFunc("/equipamentos/resumo", equipmentHandler.Summary).Methods("GET")
	api.HandleFunc("/equipamentos/{id:[0-9]+}", equipmentHandler.Get).Methods("GET")
	api.HandleFunc("/equipamentos/{id:[0-9]+}", equipmentHandler.Update).Methods("PUT")
	api.HandleFunc("/equipamentos/{id:[0-9]+}", equipmentHandler.Delete).Methods("DELETE")

	// Maintenance
	api.HandleFunc("/manutencoes", maintenanceHandler.List).Methods("GET")
	api.HandleFunc("/manutencoes", maintenanceHandler.Create).Methods("POST")
	api.HandleFunc("/manutencoes/resumo", maintenanceHandler.Summary).Methods("GET")
	api.HandleFunc("/manutencoes/{id:[0-9]+}", maintenanceHandler.Get).Methods("GET")
	api.HandleFunc("/manutencoes/{id:[0-9]+}", maintenanceHandler.Update).Methods("PUT")
	api.HandleFunc("/manutencoes/{id:[0-9]+}", maintenanceHandler.Delete).Methods("DELETE")
	api.HandleFunc("/manutencoes/{id:[0-9]+}/concluir", maintenanceHandler.Complete).Methods("PATCH")

	// Supplier requests
	api.HandleFunc("/solicitacoes", supplierHandler.Request).Methods("POST")
	api.HandleFunc("/emails/historico", supplierHandler.History).Methods("GET")
	api.HandleFunc("/emails/historico", supplierHandler.ClearHistory).Methods("DELETE")

	// Stock alerts
	api.HandleFunc("/alertas", alertHandler.List).Methods("GET")
	api.HandleFunc("/ws/alertas", alertHandler.Stream).Methods("GET")

	var h http.Handler = r
	h = middleware.NewCORS(cfg)(h)
	h = middleware.RequestLogger(log)(h)
	h = middleware.PanicRecovery(log)(h)
	return h
}
