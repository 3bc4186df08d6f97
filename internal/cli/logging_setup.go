package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rshade/retrofit/internal/config"
	"github.com/rshade/retrofit/internal/logging"
)

// setupLogging configures logging based on config file, environment, and CLI flags.
func setupLogging(cmd *cobra.Command) logging.LogPathResult {
	loggingCfg := config.GetLoggingConfig()

	debug, _ := cmd.Flags().GetBool("debug")
	if debug {
		loggingCfg.Level = "debug"
		loggingCfg.Format = logging.FormatConsole
		loggingCfg.File = ""
	}

	// Ensure log directory exists after all overrides have been applied.
	if loggingCfg.File != "" {
		if err := config.EnsureLogDir(); err != nil {
			_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Warning: could not create log directory: %v\n", err)
		}
	}

	result := logging.NewLoggerWithPath(loggingCfg.ToLoggingConfig())
	logger = logging.ComponentLogger(result.Logger, "cli")

	if result.UsingFile {
		logging.PrintLogPathMessage(cmd.ErrOrStderr(), result.FilePath)
	} else if result.FallbackUsed {
		logging.PrintFallbackWarning(cmd.ErrOrStderr(), result.FallbackReason)
	}

	ctx := cmd.Context()
	traceID := logging.GetOrGenerateTraceID(ctx)
	ctx = logging.ContextWithTraceID(ctx, traceID)
	ctx = logger.WithContext(ctx)
	cmd.SetContext(ctx)

	logger.Debug().Ctx(ctx).Str("command", cmd.Name()).Msg("command started")

	return result
}

// cleanupLogging closes the log file handle, if any.
func cleanupLogging(logResult *logging.LogPathResult) error {
	if logResult != nil {
		return logResult.Close()
	}
	return nil
}
