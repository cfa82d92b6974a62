// Package availability_tools provides the MCP tools for reading and updating
// team date availability.
//
// Read tools are always registered. availability_save is only registered
// when the server is not read-only.
package availability_tools
