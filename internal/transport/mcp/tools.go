package mcp

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/fewshot/internal/domain"
	"github.com/kailas-cloud/fewshot/internal/usecase/leave"
)

// EmployeeInput identifies an employee.
type EmployeeInput struct {
	EmployeeID string `json:"employee_id" jsonschema:"employee identifier such as E001"`
}

// ApplyInput is the input of apply_leave.
type ApplyInput struct {
	EmployeeID string   `json:"employee_id" jsonschema:"employee identifier such as E001"`
	LeaveDates []string `json:"leave_dates" jsonschema:"dates to book in YYYY-MM-DD format"`
}

// LeaveOutput is the structured result of every leave tool.
type LeaveOutput struct {
	EmployeeID string   `json:"employee_id"`
	Balance    int      `json:"balance"`
	History    []string `json:"history,omitempty"`
	Message    string   `json:"message"`
}

func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "get_leave_balance",
		Description: "Check how many leave days are left for the employee",
	}, s.handleBalance)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "apply_leave",
		Description: `Apply leave for specific dates (e.g., ["2025-04-17", "2025-05-01"])`,
	}, s.handleApply)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "get_leave_history",
		Description: "Get the list of dates the employee was previously on leave",
	}, s.handleHistory)
}

func (s *Server) handleBalance(
	ctx context.Context, _ *mcp.CallToolRequest, in EmployeeInput,
) (*mcp.CallToolResult, LeaveOutput, error) {
	acc, err := s.leave.Account(ctx, in.EmployeeID)
	if err != nil {
		return s.failure(in.EmployeeID, err)
	}
	msg := fmt.Sprintf("%s has %d leave days remaining.", acc.EmployeeID(), acc.Balance())
	return textResult(msg), LeaveOutput{EmployeeID: acc.EmployeeID(), Balance: acc.Balance(), Message: msg}, nil
}

func (s *Server) handleApply(
	ctx context.Context, _ *mcp.CallToolRequest, in ApplyInput,
) (*mcp.CallToolResult, LeaveOutput, error) {
	acc, err := s.leave.Apply(ctx, in.EmployeeID, in.LeaveDates)
	if err != nil {
		return s.failure(in.EmployeeID, err)
	}
	msg := fmt.Sprintf("Leave applied successfully for %d day(s). New balance for %s: %d.",
		len(in.LeaveDates), acc.EmployeeID(), acc.Balance())
	return textResult(msg), LeaveOutput{
		EmployeeID: acc.EmployeeID(),
		Balance:    acc.Balance(),
		History:    acc.History(),
		Message:    msg,
	}, nil
}

func (s *Server) handleHistory(
	ctx context.Context, _ *mcp.CallToolRequest, in EmployeeInput,
) (*mcp.CallToolResult, LeaveOutput, error) {
	acc, err := s.leave.Account(ctx, in.EmployeeID)
	if err != nil {
		return s.failure(in.EmployeeID, err)
	}
	history := acc.History()
	listed := "No previous leaves recorded."
	if len(history) > 0 {
		listed = strings.Join(history, ", ")
	}
	msg := fmt.Sprintf("Leave history for %s: %s", acc.EmployeeID(), listed)
	return textResult(msg), LeaveOutput{
		EmployeeID: acc.EmployeeID(),
		Balance:    acc.Balance(),
		History:    history,
		Message:    msg,
	}, nil
}

// failure turns domain errors into a tool-level error result the model can read.
// Unexpected errors are returned as protocol errors.
func (s *Server) failure(employeeID string, err error) (*mcp.CallToolResult, LeaveOutput, error) {
	var msg string
	var ibe *leave.InsufficientBalanceError
	switch {
	case errors.As(err, &ibe):
		msg = fmt.Sprintf("Insufficient balance. Requested %d, available %d.", ibe.Requested, ibe.Available)
	case errors.Is(err, domain.ErrNotFound):
		msg = fmt.Sprintf("Employee ID %s not found.", employeeID)
	case errors.Is(err, domain.ErrInvalidInput):
		msg = "Invalid request: " + strings.TrimPrefix(rootMessage(err), domain.ErrInvalidInput.Error()+": ")
	default:
		s.logger.Error("Leave tool failed", zap.String("employee_id", employeeID), zap.Error(err))
		return nil, LeaveOutput{}, fmt.Errorf("leave tool: %w", err)
	}

	res := textResult(msg)
	res.IsError = true
	return res, LeaveOutput{EmployeeID: employeeID, Message: msg}, nil
}

// rootMessage drops the "op: " prefixes added while the error travelled up.
func rootMessage(err error) string {
	msg := err.Error()
	if i := strings.Index(msg, domain.ErrInvalidInput.Error()); i >= 0 {
		return msg[i:]
	}
	return msg
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{Content: []mcp.Content{&mcp.TextContent{Text: text}}}
}
