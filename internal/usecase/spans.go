package usecase

import "github.com/riskibarqy/mix-league/internal/platform/tracing"

var usecaseSpans = tracing.NewScope("mix-league/internal/usecase", "usecase.")
