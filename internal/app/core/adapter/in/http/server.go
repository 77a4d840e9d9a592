package http

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/timeless/bank-core/internal/app/core/domain"
	"github.com/timeless/bank-core/internal/app/core/usecase"
)

var pkgLogger = log.With().Str("pkg", "http").Logger()

// Server HTTP Driving Adapter
// 只負責把 JSON 請求翻譯成 CoreUseCase 呼叫，不含任何業務規則
type Server struct {
	core *usecase.CoreUseCase
}

func NewServer(core *usecase.CoreUseCase) *Server {
	return &Server{core: core}
}

// Router 建立並回傳 gin Router
func (s *Server) Router() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(gin.Recovery())

	api := router.Group("/api/v1")
	api.POST("/accounts", s.openAccount)
	api.GET("/accounts/:number/balance", s.balanceEnquiry)
	api.GET("/accounts/:number/name", s.nameEnquiry)
	api.POST("/accounts/credit", s.credit)
	api.POST("/accounts/debit", s.debit)
	api.POST("/transfers", s.transfer)

	// for debugging purpose
	for _, routeInfo := range router.Routes() {
		pkgLogger.Debug().
			Str("path", routeInfo.Path).
			Str("method", routeInfo.Method).
			Msg("registered routes")
	}

	return router
}

type openAccountRequest struct {
	OwnerName string `json:"owner_name" binding:"required"`
	Email     string `json:"email" binding:"required"`
}

type creditDebitRequest struct {
	AccountNumber string          `json:"account_number" binding:"required"`
	Amount        decimal.Decimal `json:"amount"`
}

type transferRequest struct {
	SourceAccount      string          `json:"source_account" binding:"required"`
	DestinationAccount string          `json:"destination_account" binding:"required"`
	Amount             decimal.Decimal `json:"amount"`
}

func (s *Server) openAccount(ctx *gin.Context) {
	var req openAccountRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		badRequest(ctx, err)
		return
	}

	res, err := s.core.OpenAccount(ctx.Request.Context(), req.OwnerName, req.Email)
	s.respond(ctx, res, err)
}

func (s *Server) balanceEnquiry(ctx *gin.Context) {
	res, err := s.core.BalanceEnquiry(ctx.Request.Context(), ctx.Param("number"))
	s.respond(ctx, res, err)
}

func (s *Server) nameEnquiry(ctx *gin.Context) {
	name, err := s.core.NameEnquiry(ctx.Request.Context(), ctx.Param("number"))
	if errors.Is(err, domain.ErrAccountNotFound) {
		ctx.JSON(http.StatusNotFound, gin.H{
			"code":    domain.CodeAccountNotFound,
			"message": domain.MessageAccountNotFound,
		})
		return
	}
	if err != nil {
		internalError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"account_name": name})
}

func (s *Server) credit(ctx *gin.Context) {
	var req creditDebitRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		badRequest(ctx, err)
		return
	}

	res, err := s.core.Credit(ctx.Request.Context(), req.AccountNumber, req.Amount)
	s.respond(ctx, res, err)
}

func (s *Server) debit(ctx *gin.Context) {
	var req creditDebitRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		badRequest(ctx, err)
		return
	}

	res, err := s.core.Debit(ctx.Request.Context(), req.AccountNumber, req.Amount)
	s.respond(ctx, res, err)
}

func (s *Server) transfer(ctx *gin.Context) {
	var req transferRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		badRequest(ctx, err)
		return
	}

	res, err := s.core.Transfer(ctx.Request.Context(), req.SourceAccount, req.DestinationAccount, req.Amount)
	s.respond(ctx, res, err)
}

// respond 統一的結果輸出
// err 非 nil 表示儲存層故障，結果未知，對外一律 500
func (s *Server) respond(ctx *gin.Context, res *domain.Result, err error) {
	if err != nil {
		internalError(ctx, err)
		return
	}
	ctx.JSON(statusFor(res.Code), res)
}

// statusFor 回應碼對應的 HTTP 狀態
func statusFor(code string) int {
	switch code {
	case domain.CodeAccountNotFound:
		return http.StatusNotFound
	case domain.CodeInsufficientBalance, domain.CodeInvalidAmount, domain.CodeAccountExists:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusOK
	}
}

func badRequest(ctx *gin.Context, err error) {
	ctx.JSON(http.StatusBadRequest, gin.H{
		"error": fmt.Sprintf("error while binding json: %s", err.Error()),
	})
}

func internalError(ctx *gin.Context, err error) {
	pkgLogger.Error().Err(err).Msg("operation failed")
	ctx.JSON(http.StatusInternalServerError, gin.H{
		"error": "operation failed, outcome unknown",
	})
}
