/*
Package tracing provides lightweight request tracing.

Every HTTP request gets a span. The trace ID is taken from the X-Request-ID
header when the caller sends one and generated otherwise; it is echoed back
so clients and reverse proxies can correlate log lines. Finished spans are
handed to a buffered collector and written through zap.

# Usage

	tracer := tracing.New("userstore", logger.Logger)
	defer tracer.Close()

	router.Use(tracing.HTTPMiddleware(tracer))
*/
package tracing
