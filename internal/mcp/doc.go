// Package mcp serves the operation catalog to a calling agent over the Model
// Context Protocol.
//
// Server wraps the official MCP SDK server. Tools are registered on the SDK
// server, which handles stdio (or any other SDK transport), and in a local
// registry so they can also be listed and called programmatically without a
// transport.
package mcp
