// Package sdk provides a Go client for the cartwright HTTP API: budget-aware
// product recommendations, cart building, and budget fitting.
//
//	client, _ := sdk.New("http://localhost:8080", sdk.WithAPIKey("secret"))
//
//	rec, _ := client.Recommend(ctx, sdk.RecommendationRequest{
//	    Description: "cordless drill with safety gear",
//	    Budget:      150,
//	})
//
//	cart := client.Cart("session-42")
//	_, _ = cart.AddItem(ctx, "drill-01", 1)
//	fit, _ := cart.Fit(ctx, 150)
//
// Errors carry the server's error code; sentinel errors like
// ErrProductNotFound can be checked with errors.Is().
package sdk
