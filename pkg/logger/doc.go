// Package logger builds slog loggers with functional options and keeps
// attribute names consistent across the module.
//
// New creates a *slog.Logger writing JSON or text, optionally decorated with
// ContextExtractor callbacks that inject values stored in the context of each
// log call. Attribute helpers (Error, Slug, Scope, RecordID, ...) live in
// attr.go.
//
// # Usage
//
//	import "github.com/dmitrymomot/slugkit/pkg/logger"
//
//	log := logger.New(
//		logger.WithEnvironment("production", "reslug"),
//		logger.WithContextValue("run_id", runIDKey{}),
//	)
//	log.InfoContext(ctx, "slug changed", logger.Slug("hello-world"))
package logger
