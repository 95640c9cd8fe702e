// Package operations runs the DSS pipeline as an ordered list of steps.
//
// A run moves one workbook through six steps: extract, group, clean, enrich,
// map and render. Each step reads the results of the previous steps from
// the shared RunState and stores its own. The Manager executes the steps in
// registration order, stops at the first failure and reports the outcome of
// every step in the RunResult.
//
// Example usage:
//
//	manager := operations.NewManager(tracer, logger)
//	result, err := manager.Execute(ctx, operations.RunRequest{
//	    Source:    "survey.xlsx",
//	    Workbook:  wb,
//	    Templates: templates,
//	    Options:   dss.DefaultOptions(),
//	})
package operations
