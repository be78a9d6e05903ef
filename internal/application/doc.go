// Package application provides application initialization and dependency wiring.
// It loads the initial profile and creates the storage, calculator, handlers,
// routers, and HTTP server instances, keeping the main package focused on CLI
// parsing and orchestration.
package application
