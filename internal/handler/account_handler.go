package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/coralbank/account-service/internal/cqrs"
	"github.com/coralbank/account-service/internal/middleware"
	"github.com/coralbank/account-service/internal/models"
	"github.com/gin-gonic/gin"
)

// AccountCommander defines the write-side operations used by AccountHandler.
type AccountCommander interface {
	OpenAccount(cqrs.OpenAccountCommand) (*models.AccountSummary, error)
	CloseAccount(cqrs.CloseAccountCommand) (*models.AccountSummary, error)
}

// AccountQuerier defines the read-side operations used by AccountHandler.
type AccountQuerier interface {
	GetAccount(cqrs.GetAccountQuery) (*models.Account, error)
	ListAccountsForUser(cqrs.ListAccountsQuery) ([]models.AccountInfo, error)
}

// AccountHandler handles account lifecycle HTTP requests. Field-shape
// validation happens here; the services re-validate only business rules.
type AccountHandler struct {
	commands AccountCommander
	queries  AccountQuerier
}

type OpenAccountRequest struct {
	UserID         int64 `json:"userId" validate:"required,min=1"`
	InitialBalance int64 `json:"initialBalance" validate:"required,min=100"`
}

type CloseAccountRequest struct {
	UserID        int64  `json:"userId" validate:"required,min=1"`
	AccountNumber string `json:"accountNumber" validate:"required,len=10"`
}

func NewAccountHandler(commands AccountCommander, queries AccountQuerier) *AccountHandler {
	return &AccountHandler{commands: commands, queries: queries}
}

func (h *AccountHandler) OpenAccount(c *gin.Context) {
	var req OpenAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.RespondWithError(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if validationErrors := middleware.ValidateRequest(req); validationErrors != nil {
		middleware.RespondWithValidationError(c, validationErrors)
		return
	}

	summary, err := h.commands.OpenAccount(cqrs.OpenAccountCommand{
		UserID:         req.UserID,
		InitialBalance: req.InitialBalance,
	})
	if err != nil {
		respondWithDomainError(c, err)
		return
	}

	c.JSON(http.StatusCreated, summary)
}

func (h *AccountHandler) CloseAccount(c *gin.Context) {
	var req CloseAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.RespondWithError(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if validationErrors := middleware.ValidateRequest(req); validationErrors != nil {
		middleware.RespondWithValidationError(c, validationErrors)
		return
	}

	summary, err := h.commands.CloseAccount(cqrs.CloseAccountCommand{
		UserID:        req.UserID,
		AccountNumber: req.AccountNumber,
	})
	if err != nil {
		respondWithDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, summary)
}

func (h *AccountHandler) GetAccount(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		middleware.RespondWithError(c, http.StatusBadRequest, "Invalid account id")
		return
	}

	account, err := h.queries.GetAccount(cqrs.GetAccountQuery{ID: id})
	if err != nil {
		respondWithDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, account)
}

func (h *AccountHandler) ListAccounts(c *gin.Context) {
	userID, err := strconv.ParseInt(c.Query("user_id"), 10, 64)
	if err != nil {
		middleware.RespondWithError(c, http.StatusBadRequest, "Invalid user_id")
		return
	}

	infos, err := h.queries.ListAccountsForUser(cqrs.ListAccountsQuery{UserID: userID})
	if err != nil {
		respondWithDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, infos)
}

// respondWithDomainError maps service failures onto HTTP statuses: missing
// resources to 404, foreign ownership to 403, rule conflicts to 409, and
// the invalid-argument kind to 400.
func respondWithDomainError(c *gin.Context, err error) {
	var accErr *models.AccountError
	if errors.As(err, &accErr) {
		c.JSON(statusForCode(accErr.Code), gin.H{
			"code":    accErr.Code,
			"message": accErr.Message,
		})
		return
	}
	if errors.Is(err, models.ErrInvalidArgument) {
		middleware.RespondWithError(c, http.StatusBadRequest, err.Error())
		return
	}
	middleware.RespondWithError(c, http.StatusInternalServerError, "Internal server error")
}

func statusForCode(code models.ErrorCode) int {
	switch code {
	case models.CodeUserNotFound, models.CodeAccountNotFound:
		return http.StatusNotFound
	case models.CodeOwnerMismatch:
		return http.StatusForbidden
	default:
		return http.StatusConflict
	}
}
