package main

import (
	"fmt"

	"github.com/hyperengineering/macrolog"
)

// printNotifier renders the client's (category, outcome) events as terminal
// text. All user-facing wording lives here; the client only picks keys.
type printNotifier struct{}

func (printNotifier) Notify(category macrolog.NotifyCategory, outcome macrolog.NotifyOutcome, params map[string]any) {
	switch outcome {
	case macrolog.OutcomeInvalid:
		fmt.Printf("Rejected: %v\n", params["error"])
	case macrolog.OutcomeThrottled:
		if minutes, ok := params["minutes"]; ok {
			fmt.Printf("Sync requested too frequently. Try again in %v minute(s).\n", minutes)
		} else {
			fmt.Println("Sync requested too frequently. Try again shortly.")
		}
	case macrolog.OutcomeOffline:
		fmt.Println("Offline: changes saved locally and will sync later.")
	case macrolog.OutcomeAuth:
		fmt.Println("Authentication required. Please sign in again.")
	case macrolog.OutcomeFailed:
		fmt.Printf("Sync failed: %v\n", params["error"])
	case macrolog.OutcomeSynced:
		fmt.Printf("Synchronized (%v).\n", params["direction"])
	case macrolog.OutcomeUpToDate:
		fmt.Println("Already up to date.")
	default:
		fmt.Printf("%s %s\n", category, outcome)
	}
}
