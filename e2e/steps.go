package e2e

import (
	"github.com/cucumber/godog"

	"roster/e2e/steps/records"
)

// RegisterSteps registers all step definitions from modular packages
func RegisterSteps(ctx *godog.ScenarioContext, tc *TestContext) {
	records.RegisterSteps(ctx, tc)
}
