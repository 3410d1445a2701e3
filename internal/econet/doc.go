// Package econet provides a client for the local HTTP API of PLUM ecoNET-300
// heating controller modules.
//
// The module exposes three parameter registries over basic-auth GET
// requests. Each has its own payload shape:
//   - sysParams: identity and system state, returned as a flat object
//   - regParams: live readings, nested under "curr"
//   - editParams: set-points, nested under "data" as {value, minv, maxv}
//
// FetchData merges the three into one flat Params record in the order
// regular, system, editable. Later registries win on key collisions.
//
// # Transport
//
// Client.Fetch retries only attempts that time out, up to five times with a
// one second pause. Any other failure is logged and reported as a nil
// payload. HTTP 401 is reported as an auth DeviceError.
//
// # Usage Example
//
//	client := econet.NewClient("192.168.1.50", "admin", "admin", http.DefaultClient)
//	api, err := econet.Create(ctx, client, memcache.New())
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	params, err := api.FetchData(ctx)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(params["tempCO"])
//
//	limits, _ := api.GetParamLimits(ctx, "tempCOSet")
//	if err := limits.Validate("tempCOSet", 55.0); err == nil {
//	    ok, _ := api.SetParam(ctx, "tempCOSet", 55.0)
//	    fmt.Println("written:", ok)
//	}
//
// # Errors
//
// Errors are *DeviceError values categorized by ErrorType. Hosts use
// IsAuthError, IsDataError and IsValidationError to branch, and
// GetShortErrorMessage / GetTroubleshootingHint to report them.
package econet
