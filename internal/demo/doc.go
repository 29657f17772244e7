// Package demo contains two small MCP providers used for demonstrations and
// tests: "Math" with add and multiply, and "CAD" with draw_cylinder.
//
// They are ordinary mcp-go servers. `mcphost demo-provider math` serves one
// over stdio; tests attach to them in-process.
package demo
