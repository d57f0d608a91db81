package poller

import (
	"encoding/json"
	"fmt"
	"log"
	"strings"
)

// Task is one kind of invocation. Each variant carries only what it needs.
type Task interface {
	Name() string
}

// ManagerTask plans the day: reconcile schedules and arm the kickoff
type ManagerTask struct{}

// KickoffTask switches the recurring poller on
type KickoffTask struct{}

// PollTask runs one poll cycle. A nil Budget falls back to the context deadline.
type PollTask struct {
	Budget Budget
}

// ScoreboardTask refreshes today's schedule from the live scoreboard
type ScoreboardTask struct{}

func (ManagerTask) Name() string { return "manager" }
func (KickoffTask) Name() string { return "kickoff" }
func (PollTask) Name() string { return "poller" }
func (ScoreboardTask) Name() string { return "scoreboard" }

// ParseTask maps a task name to its variant. Unknown or empty names poll.
func ParseTask(name string) Task {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "manager":
		return ManagerTask{}
	case "kickoff", "enable_poller":
		return KickoffTask{}
	case "scoreboard":
		return ScoreboardTask{}
	case "poller", "":
		return PollTask{}
	default:
		log.Printf("[poller] unknown task %q, polling", name)
		return PollTask{}
	}
}

type taskPayload struct {
	Task string `json:"task"`
}

// EncodeTask renders the trigger payload for a task
func EncodeTask(t Task) []byte {
	data, _ := json.Marshal(taskPayload{Task: t.Name()})
	return data
}

// DecodeTask reads a trigger payload. An empty payload polls.
func DecodeTask(payload []byte) (Task, error) {
	if len(strings.TrimSpace(string(payload))) == 0 {
		return PollTask{}, nil
	}
	var p taskPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return nil, fmt.Errorf("decoding task payload: %w", err)
	}
	return ParseTask(p.Task), nil
}
