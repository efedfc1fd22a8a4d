// Package connectivity watches network reachability by probing the remote
// service on an interval. It reports offline to online transitions only,
// debounced so a flapping link does not fire a burst of sync cycles.
package connectivity
