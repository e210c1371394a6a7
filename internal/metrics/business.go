package metrics

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

var (
	meter = otel.Meter("gramz/business")

	// Agent metrics
	AgentTurnsTotal    metric.Int64Counter
	AgentTurnDuration  metric.Float64Histogram
	FunctionCallsTotal metric.Int64Counter

	// Recipe metrics
	RecipeStoresTotal   metric.Int64Counter
	SearchResultsCount  metric.Int64Histogram
	RecipeCacheRequests metric.Int64Counter

	// External API metrics
	ExternalAPICallsTotal metric.Int64Counter
	ExternalAPIDuration   metric.Float64Histogram

	// Text generation metrics
	TextGenerationDuration metric.Float64Histogram
	ProviderFallbackTotal  metric.Int64Counter
)

func Init() error {
	var err error

	AgentTurnsTotal, err = meter.Int64Counter(
		"agent.turns.total",
		metric.WithDescription("Total number of agent turns by outcome"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return err
	}

	AgentTurnDuration, err = meter.Float64Histogram(
		"agent.turn.duration",
		metric.WithDescription("Duration of one agent turn including function calls"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.5, 1, 2, 5, 10, 20, 40, 60),
	)
	if err != nil {
		return err
	}

	FunctionCallsTotal, err = meter.Int64Counter(
		"agent.function_calls.total",
		metric.WithDescription("Total number of dispatched function calls"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return err
	}

	RecipeStoresTotal, err = meter.Int64Counter(
		"recipe.stores.total",
		metric.WithDescription("Total number of recipe store attempts"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return err
	}

	SearchResultsCount, err = meter.Int64Histogram(
		"recipe.search.results",
		metric.WithDescription("Number of matches returned per similarity search"),
		metric.WithUnit("1"),
		metric.WithExplicitBucketBoundaries(0, 1, 2, 3, 5, 7, 10, 20),
	)
	if err != nil {
		return err
	}

	RecipeCacheRequests, err = meter.Int64Counter(
		"recipe.cache.requests",
		metric.WithDescription("Recipe list cache lookups by result"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return err
	}

	ExternalAPICallsTotal, err = meter.Int64Counter(
		"external.api.calls.total",
		metric.WithDescription("Total number of external API calls"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return err
	}

	ExternalAPIDuration, err = meter.Float64Histogram(
		"external.api.duration",
		metric.WithDescription("Duration of external API calls"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.1, 0.5, 1, 2, 5, 10, 30),
	)
	if err != nil {
		return err
	}

	TextGenerationDuration, err = meter.Float64Histogram(
		"text.generation.duration",
		metric.WithDescription("Duration of text-only model completions"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.1, 0.5, 1, 2, 5, 10, 30, 60),
	)
	if err != nil {
		return err
	}

	ProviderFallbackTotal, err = meter.Int64Counter(
		"provider.fallback.total",
		metric.WithDescription("Total number of provider fallback events"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return err
	}

	return nil
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

// RecordExternalCall records one outbound provider call. Safe before Init.
func RecordExternalCall(ctx context.Context, provider string, start time.Time, err error) {
	attrs := metric.WithAttributes(
		attribute.String("provider", provider),
		attribute.String("status", status(err)),
	)
	if ExternalAPIDuration != nil {
		ExternalAPIDuration.Record(ctx, time.Since(start).Seconds(), attrs)
	}
	if ExternalAPICallsTotal != nil {
		ExternalAPICallsTotal.Add(ctx, 1, attrs)
	}
}

// RecordTurn records one agent turn. Safe before Init.
func RecordTurn(ctx context.Context, start time.Time, steps int, err error) {
	attrs := metric.WithAttributes(attribute.String("status", status(err)))
	if AgentTurnDuration != nil {
		AgentTurnDuration.Record(ctx, time.Since(start).Seconds(), attrs)
	}
	if AgentTurnsTotal != nil {
		AgentTurnsTotal.Add(ctx, 1, metric.WithAttributes(
			attribute.String("status", status(err)),
			attribute.Int("steps", steps),
		))
	}
}

// RecordFunctionCall records one dispatched function call. Safe before Init.
func RecordFunctionCall(ctx context.Context, name string, success bool) {
	if FunctionCallsTotal == nil {
		return
	}
	FunctionCallsTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("function", name),
		attribute.Bool("success", success),
	))
}

// RecordRecipeStore records one recipe persistence attempt. Safe before Init.
func RecordRecipeStore(ctx context.Context, mode string, err error) {
	if RecipeStoresTotal == nil {
		return
	}
	RecipeStoresTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("write_mode", mode),
		attribute.String("status", status(err)),
	))
}

// RecordSearch records the size of one similarity search result. Safe before Init.
func RecordSearch(ctx context.Context, results int) {
	if SearchResultsCount == nil {
		return
	}
	SearchResultsCount.Record(ctx, int64(results))
}

// RecordCacheLookup records a recipe list cache hit or miss. Safe before Init.
func RecordCacheLookup(ctx context.Context, hit bool) {
	if RecipeCacheRequests == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	RecipeCacheRequests.Add(ctx, 1, metric.WithAttributes(attribute.String("result", result)))
}

// RecordTextGeneration records one text-only completion. Safe before Init.
func RecordTextGeneration(ctx context.Context, provider string, start time.Time, err error) {
	if TextGenerationDuration == nil {
		return
	}
	TextGenerationDuration.Record(ctx, time.Since(start).Seconds(), metric.WithAttributes(
		attribute.String("provider", provider),
		attribute.String("status", status(err)),
	))
}

// RecordFallback records a switch from the primary to the secondary provider. Safe before Init.
func RecordFallback(ctx context.Context, primary, secondary, reason string) {
	if ProviderFallbackTotal == nil {
		return
	}
	ProviderFallbackTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("primary", primary),
		attribute.String("secondary", secondary),
		attribute.String("reason", reason),
	))
}
