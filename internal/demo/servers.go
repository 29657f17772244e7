package demo

import (
	"context"
	"fmt"
	"math"
	"strconv"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

const (
	// MathName is the provider name the Math server reports.
	MathName = "Math"
	// CADName is the provider name the CAD server reports.
	CADName = "CAD"

	serverVersion = "1.0.0"
)

// NewMathServer returns an MCP server exposing add and multiply.
func NewMathServer() *server.MCPServer {
	s := server.NewMCPServer(MathName, serverVersion, server.WithToolCapabilities(false))

	s.AddTool(mcp.NewTool("add",
		mcp.WithDescription("add a and b"),
		mcp.WithNumber("a", mcp.Required(), mcp.Description("first operand")),
		mcp.WithNumber("b", mcp.Required(), mcp.Description("second operand")),
	), binaryOp(func(a, b float64) float64 { return a + b }))

	s.AddTool(mcp.NewTool("multiply",
		mcp.WithDescription("multiply a and b"),
		mcp.WithNumber("a", mcp.Required(), mcp.Description("first operand")),
		mcp.WithNumber("b", mcp.Required(), mcp.Description("second operand")),
	), binaryOp(func(a, b float64) float64 { return a * b }))

	return s
}

func binaryOp(op func(a, b float64) float64) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		a, err := request.RequireFloat("a")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		b, err := request.RequireFloat("b")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultText(FormatNumber(op(a, b))), nil
	}
}

// FormatNumber renders integral values without a fractional part, so 2+3 is "5".
func FormatNumber(v float64) string {
	if v == math.Trunc(v) && math.Abs(v) < 1e15 {
		return strconv.FormatInt(int64(v), 10)
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// NewCADServer returns an MCP server exposing draw_cylinder. It only describes
// the solid it would create; there is no CAD backend behind it.
func NewCADServer() *server.MCPServer {
	s := server.NewMCPServer(CADName, serverVersion, server.WithToolCapabilities(false))

	s.AddTool(mcp.NewTool("draw_cylinder",
		mcp.WithDescription("draw a cylinder with the given radius and height (mm)"),
		mcp.WithNumber("radius", mcp.Required(), mcp.Description("radius in millimetres")),
		mcp.WithNumber("height", mcp.Required(), mcp.Description("height in millimetres")),
	), drawCylinder)

	return s
}

func drawCylinder(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	radius, err := request.RequireFloat("radius")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	height, err := request.RequireFloat("height")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if radius <= 0 || height <= 0 {
		return mcp.NewToolResultError("radius and height must be positive"), nil
	}

	volume := math.Pi * radius * radius * height
	return mcp.NewToolResultText(fmt.Sprintf("cylinder r=%smm h=%smm volume=%.2fmm3",
		FormatNumber(radius), FormatNumber(height), volume)), nil
}

// Servers returns the demo servers keyed by the name used on the command line.
func Servers() map[string]*server.MCPServer {
	return map[string]*server.MCPServer{
		"math": NewMathServer(),
		"cad":  NewCADServer(),
	}
}
