// Copyright (C) 2025 Michael J. Fromberger. All Rights Reserved.

package filterstack

import "expvar"

// stackMetrics record stack activity counters.
type stackMetrics struct {
	channelBuilt expvar.Int // number of channel stacks initialized
	channelFreed expvar.Int // number of channel stacks destroyed
	callBuilt    expvar.Int // number of call stacks initialized
	callFreed    expvar.Int // number of call stacks destroyed
	initFail     expvar.Int // number of stacks abandoned by a failed init hook
	callOps      expvar.Int // number of call operations dispatched
	channelOps   expvar.Int // number of channel operations dispatched
	cancels      expvar.Int // number of cancellations injected

	emap *expvar.Map
}

var metrics = newStackMetrics()

func newStackMetrics() *stackMetrics {
	sm := &stackMetrics{emap: new(expvar.Map)}
	sm.emap.Set("channel_stacks_built", &sm.channelBuilt)
	sm.emap.Set("channel_stacks_destroyed", &sm.channelFreed)
	sm.emap.Set("call_stacks_built", &sm.callBuilt)
	sm.emap.Set("call_stacks_destroyed", &sm.callFreed)
	sm.emap.Set("init_failures", &sm.initFail)
	sm.emap.Set("call_ops", &sm.callOps)
	sm.emap.Set("channel_ops", &sm.channelOps)
	sm.emap.Set("cancels_sent", &sm.cancels)
	return sm
}

// Metrics returns the metrics map shared by all stacks in the process. It
// is safe for the caller to add additional metrics to the map.
func Metrics() *expvar.Map { return metrics.emap }
