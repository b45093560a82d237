package service

import (
	"strings"
	"time"

	"walletsync/internal/core/poll"
	"walletsync/internal/platform/config"
	perr "walletsync/internal/platform/errors"
)

// Policy is the sampling budget of one convergence
type Policy struct {
	Interval    time.Duration `json:"interval"`
	MaxAttempts int           `json:"max_attempts"`
}

// PolicySet holds every convergence parameterization as data
type PolicySet struct {
	KYC       Policy             `json:"kyc"`
	Order     Policy             `json:"order"`
	Card      Policy             `json:"card"`
	EmailWait poll.CountdownSpec `json:"email_wait"`
}

// DefaultPolicies returns the production budgets
func DefaultPolicies() PolicySet {
	return PolicySet{
		KYC:       Policy{Interval: 5 * time.Second, MaxAttempts: 6},
		Order:     Policy{Interval: 5 * time.Second, MaxAttempts: 20},
		Card:      Policy{Interval: 5 * time.Second, MaxAttempts: 24},
		EmailWait: poll.CountdownSpec{From: 120, Every: time.Second},
	}
}

// Validate checks every policy
func (p PolicySet) Validate() error {
	for name, pol := range map[string]Policy{"kyc": p.KYC, "order": p.Order, "card": p.Card} {
		if pol.MaxAttempts < 1 {
			return perr.InvalidArgf("policy %s: max attempts must be >= 1, got %d", name, pol.MaxAttempts)
		}
		if pol.Interval <= 0 {
			return perr.InvalidArgf("policy %s: interval must be > 0, got %s", name, pol.Interval)
		}
	}
	return p.EmailWait.Validate()
}

// policyFile is the yaml override shape, empty fields keep the current value
type policyFile struct {
	KYC       *policyEntry `yaml:"kyc"`
	Order     *policyEntry `yaml:"order"`
	Card      *policyEntry `yaml:"card"`
	EmailWait *struct {
		From  int    `yaml:"from"`
		Every string `yaml:"every"`
	} `yaml:"email_wait"`
}

type policyEntry struct {
	Interval    string `yaml:"interval"`
	MaxAttempts int    `yaml:"max_attempts"`
}

func (e *policyEntry) apply(p *Policy, name string) error {
	if e == nil {
		return nil
	}
	if e.Interval != "" {
		d, err := time.ParseDuration(strings.TrimSpace(e.Interval))
		if err != nil {
			return perr.Wrapf(err, perr.ErrorCodeInvalidArgument, "policy %s: interval", name)
		}
		p.Interval = d
	}
	if e.MaxAttempts != 0 {
		p.MaxAttempts = e.MaxAttempts
	}
	return nil
}

// LoadPolicies layers defaults, the optional POLICY_FILE yaml and per kind env values
//
//	CONVERGE_POLICY_FILE=/etc/walletsync/policy.yaml
//	CONVERGE_ORDER_INTERVAL=2s
//	CONVERGE_CARD_MAX_ATTEMPTS=30
//	CONVERGE_EMAIL_WAIT_FROM=90
func LoadPolicies(cfg config.Conf) (PolicySet, error) {
	c := cfg.Prefix("CONVERGE_")
	p := DefaultPolicies()

	var f policyFile
	ok, err := c.MayYAML("POLICY_FILE", &f)
	if err != nil {
		return PolicySet{}, err
	}
	if ok {
		if err := f.KYC.apply(&p.KYC, "kyc"); err != nil {
			return PolicySet{}, err
		}
		if err := f.Order.apply(&p.Order, "order"); err != nil {
			return PolicySet{}, err
		}
		if err := f.Card.apply(&p.Card, "card"); err != nil {
			return PolicySet{}, err
		}
		if f.EmailWait != nil {
			if f.EmailWait.From != 0 {
				p.EmailWait.From = f.EmailWait.From
			}
			if f.EmailWait.Every != "" {
				d, err := time.ParseDuration(f.EmailWait.Every)
				if err != nil {
					return PolicySet{}, perr.Wrapf(err, perr.ErrorCodeInvalidArgument, "policy email_wait: every")
				}
				p.EmailWait.Every = d
			}
		}
	}

	p.KYC = envPolicy(c.Prefix("KYC_"), p.KYC)
	p.Order = envPolicy(c.Prefix("ORDER_"), p.Order)
	p.Card = envPolicy(c.Prefix("CARD_"), p.Card)
	ew := c.Prefix("EMAIL_WAIT_")
	p.EmailWait.From = ew.MayInt("FROM", p.EmailWait.From)
	p.EmailWait.Every = ew.MayDuration("EVERY", p.EmailWait.Every)

	if err := p.Validate(); err != nil {
		return PolicySet{}, err
	}
	return p, nil
}

func envPolicy(c config.Conf, p Policy) Policy {
	p.Interval = c.MayDuration("INTERVAL", p.Interval)
	p.MaxAttempts = c.MayInt("MAX_ATTEMPTS", p.MaxAttempts)
	return p
}
