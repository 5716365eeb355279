package metrics

import "time"

// CoordinatorMetrics provides observability for coordinator RPC calls: the
// getListing/getFileInfo/mkdirs/create/addBlock/complete/delete/getVersion
// methods issued against the namespace coordinator.
//
// This interface is optional - pass nil to disable metrics collection with
// zero overhead.
//
// Example usage:
//
//	// With metrics enabled
//	m := prometheus.NewCoordinatorMetrics()
//	client.WithMetrics(m, nil, nil) // client is a *dfsclient.Client
//
//	// Without metrics (pass nil for zero overhead)
//	client.WithMetrics(nil, nil, nil)
type CoordinatorMetrics interface {
	// RecordCall records a completed coordinator RPC with its method,
	// endpoint, duration, and outcome.
	//
	// Parameters:
	//   - method: RPC method name (e.g., "getListing", "create", "addBlock")
	//   - endpoint: coordinator endpoint that served the call
	//   - duration: time taken to process the call
	//   - errorCode: error taxonomy code if the call failed, empty if successful
	RecordCall(method string, endpoint string, duration time.Duration, errorCode string)

	// RecordCallStart increments the in-flight call counter.
	RecordCallStart(method string, endpoint string)

	// RecordCallEnd decrements the in-flight call counter.
	RecordCallEnd(method string, endpoint string)

	// RecordRetry records a retry against the next endpoint in the list
	// after an infrastructure failure.
	RecordRetry(method string, fromEndpoint string, toEndpoint string)

	// RecordConnectionOpened records a new coordinator connection being
	// established.
	RecordConnectionOpened(endpoint string)

	// RecordConnectionClosed records a coordinator connection being closed.
	RecordConnectionClosed(endpoint string)

	// RecordConnectionFailed records a failed dial attempt to an endpoint.
	RecordConnectionFailed(endpoint string)

	// SetActiveConnections updates the current open-connection count.
	SetActiveConnections(count int32)
}
