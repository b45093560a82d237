package main

import (
	"fmt"
	"strings"

	dom "walletsync/internal/services/convergence/domain"

	"github.com/charmbracelet/lipgloss"
)

var (
	green  = lipgloss.Color("76")
	red    = lipgloss.Color("204")
	yellow = lipgloss.Color("214")
	dim    = lipgloss.Color("243")
)

var (
	successStyle = lipgloss.NewStyle().Foreground(green)
	errorStyle   = lipgloss.NewStyle().Foreground(red)
	warnStyle    = lipgloss.NewStyle().Foreground(yellow)
	mutedStyle   = lipgloss.NewStyle().Foreground(dim)
	labelStyle   = lipgloss.NewStyle().Foreground(dim)
	plainStyle   = lipgloss.NewStyle()
)

func muted(s string) string { return mutedStyle.Render(s) }

func flag(v bool) string {
	if v {
		return warnStyle.Render("true")
	}
	return successStyle.Render("false")
}

func successMsg(format string, a ...any) string {
	return successStyle.Render("✓") + " " + fmt.Sprintf(format, a...)
}

func warnMsg(format string, a ...any) string {
	return warnStyle.Render("!") + " " + fmt.Sprintf(format, a...)
}

func errorMsg(format string, a ...any) string {
	return errorStyle.Render("✗") + " " + fmt.Sprintf(format, a...)
}

// stateStyle colors a state by how the resource ended up
func stateStyle(o outcome) lipgloss.Style {
	if o.Exhausted {
		return warnStyle
	}
	switch o.Kind {
	case dom.KindKYC, dom.KindTierCheck:
		switch dom.KycState(o.State) {
		case dom.KycVerifiedEligible, dom.KycVerifiedIneligible:
			return successStyle
		case dom.KycFailed:
			return errorStyle
		case dom.KycInReview, dom.KycUndecided:
			return warnStyle
		}
	case dom.KindOrder:
		switch dom.OrderState(o.State) {
		case dom.OrderFinished:
			return successStyle
		case dom.OrderFailed, dom.OrderCanceled:
			return errorStyle
		}
	case dom.KindCard:
		switch dom.CardStatus(o.State) {
		case dom.CardActive, dom.CardCreated:
			return successStyle
		case dom.CardBlocked, dom.CardExpired:
			return errorStyle
		}
	}
	return plainStyle
}

type pair struct {
	key   string
	value string
}

func kv(key, value string) pair { return pair{key: key, value: value} }

// keyValues renders aligned "key:  value" lines with a trailing newline
func keyValues(indent string, pairs ...pair) string {
	width := 0
	for _, p := range pairs {
		if n := len(p.key); n > width {
			width = n
		}
	}
	var b strings.Builder
	for _, p := range pairs {
		label := labelStyle.Render(p.key + ":")
		pad := strings.Repeat(" ", width-len(p.key)+2)
		b.WriteString(indent + label + pad + p.value + "\n")
	}
	return b.String()
}
