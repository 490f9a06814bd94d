package usecase

import (
	"errors"
	"fmt"
	"net/http"

	"app/internal/permission"
)

// Error はusecaseから返す構造化エラー。
// StatusはHTTPステータス、Codeは機械可読コードで、handlerのwriteErrorがそのまま返す。
type Error struct {
	Status  int
	Code    string
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%d %s: %s", e.Status, e.Code, e.Message)
}

func AsError(err error) (*Error, bool) {
	var ue *Error
	ok := errors.As(err, &ue)
	return ue, ok
}

// エラーコード一覧
const (
	CodeNotOwner          = "NOT_OWNER"
	CodeInsufficientRole  = "INSUFFICIENT_ROLE"
	CodeForbidden         = "FORBIDDEN"
	CodeInvalidQuantity   = "INVALID_QUANTITY"
	CodeInvalidRating     = "INVALID_RATING"
	CodeEmptyCart         = "EMPTY_CART"
	CodeIllegalTransition = "ILLEGAL_TRANSITION"
	CodeOrderNotCompleted = "ORDER_NOT_COMPLETED"
	CodeDuplicateReview   = "DUPLICATE_REVIEW"
	CodeConflict          = "CONFLICT"
	CodeNotFound          = "NOT_FOUND"
	CodeValidation        = "VALIDATION"
	CodeUnauthorized      = "UNAUTHORIZED"
	CodeInternal          = "INTERNAL"
)

// 認可拒否（403）。Permission Evaluatorの理由をコードに写す。
func NewAuthorizationError(reason permission.Reason) error {
	code := CodeForbidden
	switch reason {
	case permission.ReasonNotOwner:
		code = CodeNotOwner
	case permission.ReasonInsufficientRole:
		code = CodeInsufficientRole
	}
	return &Error{Status: http.StatusForbidden, Code: code, Message: "forbidden"}
}

// 入力不正（400）
func NewValidationError(code string, message string) error {
	return &Error{Status: http.StatusBadRequest, Code: code, Message: message}
}

// 状態不正（409）。不正遷移・未完了注文へのレビューなど。
func NewStateError(code string, message string) error {
	return &Error{Status: http.StatusConflict, Code: code, Message: message}
}

// 同時更新で負けた（409）
func NewConflictError(message string) error {
	return &Error{Status: http.StatusConflict, Code: CodeConflict, Message: message}
}

func NewNotFoundError(message string) error {
	return &Error{Status: http.StatusNotFound, Code: CodeNotFound, Message: message}
}

func NewUnauthorizedError() error {
	return &Error{Status: http.StatusUnauthorized, Code: CodeUnauthorized, Message: "unauthorized"}
}

func NewInternalError() error {
	return &Error{Status: http.StatusInternalServerError, Code: CodeInternal, Message: "db error"}
}
