package server

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"edupay/internal/database"
	"edupay/internal/service"
)

// Server is the HTTP surface of the payment/voucher core.
type Server struct {
	payments service.PaymentService
	vouchers service.VoucherService
	health   database.Service
	router   *gin.Engine
}

func NewServer(payments service.PaymentService, vouchers service.VoucherService, health database.Service) *Server {
	router := gin.Default()
	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST"},
		AllowHeaders: []string{"Origin", "Content-Type", "Authorization"},
	}))

	s := &Server{
		payments: payments,
		vouchers: vouchers,
		health:   health,
		router:   router,
	}

	api := router.Group("/api/v1")
	{
		api.POST("/payments", s.handleInitiatePayment)
		// Public: provider-invoked return callback.
		api.GET("/payments/vnpay-return", s.handleVNPayReturn)
		api.POST("/vouchers/validate", s.handleValidateVoucher)
		api.POST("/vouchers/apply", s.handleApplyVoucher)
	}
	router.GET("/health", s.handleHealth)

	return s
}

// Run starts the HTTP server.
func (s *Server) Run(addr string) error {
	return s.router.Run(addr)
}
