package session

import "github.com/olegrjumin/threatlens/internal/checker"

// Notifier receives everything the manager publishes.
// Result and warning calls are made while the target's session lock is held,
// so per target they arrive in generation order. Implementations must not
// block and must not call back into the Manager.
type Notifier interface {
	ResultUpdated(result checker.AnalysisResult)
	WarningRaised(targetKey string, generation uint64, warning checker.Warning)
	TrackerBlocked(targetKey string, decision checker.TrackerDecision)
}

type nopNotifier struct{}

func (nopNotifier) ResultUpdated(checker.AnalysisResult)           {}
func (nopNotifier) WarningRaised(string, uint64, checker.Warning)  {}
func (nopNotifier) TrackerBlocked(string, checker.TrackerDecision) {}
