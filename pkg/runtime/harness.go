package runtime

import "github.com/caitsith-go/caitsith/pkg/party"

// Pump drives every instance in instances to completion, relaying each
// SendMany/SendPrivate action to its recipients and collecting each
// instance's Return value. It is a test helper: production hosts drive
// Poke/Message from their own transport loop instead.
func Pump(instances map[party.ID]*Instance) (map[party.ID]interface{}, error) {
	results := make(map[party.ID]interface{}, len(instances))
	done := make(map[party.ID]bool, len(instances))
	for len(done) < len(instances) {
		progressed := false
		for id, inst := range instances {
			if done[id] {
				continue
			}
			action, err := inst.Poke()
			if err != nil {
				return results, err
			}
			switch action.Kind {
			case ActionSendMany:
				progressed = true
				for otherID, other := range instances {
					if otherID == id {
						continue
					}
					if err := other.Message(id, action.Data); err != nil {
						return results, err
					}
				}
			case ActionSendPrivate:
				progressed = true
				if other, ok := instances[action.To]; ok {
					if err := other.Message(id, action.Data); err != nil {
						return results, err
					}
				}
			case ActionReturn:
				progressed = true
				done[id] = true
				results[id] = action.Output
			case ActionWait:
			}
		}
		if !progressed {
			// Every live instance is blocked with nothing to send: no
			// transport-level deadlock detection is implemented, so spin.
			// A correct protocol always eventually produces an action once
			// every peer's prior message has been delivered.
			continue
		}
	}
	return results, nil
}
