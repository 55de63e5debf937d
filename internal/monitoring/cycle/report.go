package cycle

import (
	"fmt"
	"strings"

	"github.com/vietddude/nodewatch/internal/core/domain"
)

// AllClearMessage is sent when no tracked node is flagged.
const AllClearMessage = "✅ All nodes active."

// FormatReport renders the message for one evaluated cycle. Node IDs are put
// in code blocks so chat clients do not mangle or link them.
func FormatReport(result domain.CycleResult) string {
	if result.Healthy() {
		return AllClearMessage
	}

	lines := make([]string, 0, 1+2*len(result.Flagged))
	lines = append(lines, fmt.Sprintf("⚠️ %d node(s) not connected:", len(result.Flagged)))
	for _, v := range result.Flagged {
		lines = append(lines, fmt.Sprintf("```\n%s\n```", v.NodeID))
		lines = append(lines, fmt.Sprintf("uptime: %s", v.Uptime))
	}
	return strings.Join(lines, "\n")
}
