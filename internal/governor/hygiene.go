package governor

// sessionHygiene recommends compact/reset actions from session pressure:
// context utilization against the budget and the message count.
func sessionHygiene(messageCount, inputTokens, optimizedTokens, contextBudget int) *SessionHygiene {
	safeBudget := contextBudget
	if safeBudget < 1 {
		safeBudget = 1
	}
	inputUtilization := float64(inputTokens) / float64(safeBudget) * 100
	optimizedUtilization := float64(optimizedTokens) / float64(safeBudget) * 100

	var action string
	var playbook []string
	switch {
	case inputUtilization >= 80 || messageCount >= 55:
		action = "checkpoint_then_compact_immediately"
		playbook = []string{
			"Create a short checkpoint file (goal, done, next, touched files)",
			"Compact the session now to reduce context pressure",
			"If switching to unrelated work, start a fresh session after compacting",
		}
	case inputUtilization >= 50 || messageCount >= 35:
		action = "checkpoint_then_compact"
		playbook = []string{
			"Create a short checkpoint before ending this task chunk",
			"Compact around this point instead of waiting for hard limits",
		}
	case inputUtilization >= 35 || messageCount >= 25:
		action = "prepare_checkpoint"
		playbook = []string{
			"Prepare checkpoint bullets now to make the next compact cheap",
			"Check context usage periodically and compact around 50%",
		}
	default:
		action = "continue"
		playbook = []string{
			"Continue in the same session for this task",
			"Keep one session per task to avoid context drift",
		}
	}

	return &SessionHygiene{
		MessageCountEstimate:           messageCount,
		InputContextUtilizationPct:     round1(inputUtilization),
		OptimizedContextUtilizationPct: round1(optimizedUtilization),
		RecommendedAction:              action,
		Playbook:                       playbook,
		TokenHygieneHabits: []string{
			"Break large requests into smaller task chunks",
			"Check context usage periodically and compact around 50%",
			"Save checkpoints before compacting to preserve continuity",
		},
	}
}
