package service

import (
	"context"
	"errors"
	"testing"
	"time"

	perr "walletsync/internal/platform/errors"
	ptime "walletsync/internal/platform/time"
	dom "walletsync/internal/services/convergence/domain"
)

// tierSeq replays tier samples and repeats the last one
type tierSeq struct {
	seq   []dom.Tiers
	errAt map[int]error
	calls int
}

func (f *tierSeq) Tiers(context.Context, string) (dom.Tiers, error) {
	f.calls++
	if err, ok := f.errAt[f.calls]; ok {
		return nil, err
	}
	i := min(f.calls-1, len(f.seq)-1)
	return f.seq[i], nil
}

type eligibility struct {
	ok    bool
	err   error
	calls int
}

func (e *eligibility) EligibleForBuy(context.Context, string) (bool, error) {
	e.calls++
	return e.ok, e.err
}

type orderSeq struct {
	states []dom.OrderState
	err    error
	calls  int
}

func (f *orderSeq) BuyOrder(_ context.Context, id string) (dom.BuyOrder, error) {
	f.calls++
	if f.err != nil {
		return dom.BuyOrder{}, f.err
	}
	i := min(f.calls-1, len(f.states)-1)
	return dom.BuyOrder{ID: id, State: f.states[i]}, nil
}

type cardSeq struct {
	statuses []dom.CardStatus
	calls    int
}

func (f *cardSeq) Card(_ context.Context, id string) (dom.Card, error) {
	f.calls++
	i := min(f.calls-1, len(f.statuses)-1)
	return dom.Card{ID: id, Status: f.statuses[i]}, nil
}

type recorder struct {
	recs []dom.OutcomeRecord
	err  error
}

func (r *recorder) Record(_ context.Context, rec dom.OutcomeRecord) error {
	r.recs = append(r.recs, rec)
	return r.err
}

func pending() dom.Tiers {
	return dom.Tiers{dom.TierSilver: dom.TierVerified, dom.TierGold: dom.TierPending}
}
func gold() dom.Tiers {
	return dom.Tiers{dom.TierSilver: dom.TierVerified, dom.TierGold: dom.TierVerified}
}

func newSvc(opts Options) (*Svc, *ptime.Fake) {
	clk := ptime.NewFake(time.Unix(1_700_000_000, 0))
	opts.Clock = clk
	return New(opts), clk
}

func TestPollForKycState_PendingThroughoutIsUndecided(t *testing.T) {
	src := &tierSeq{seq: []dom.Tiers{pending()}}
	rec := &recorder{}
	s, clk := newSvc(Options{Tiers: src, Eligibility: &eligibility{}, Recorder: rec})

	res, err := s.PollForKycState(context.Background(), "u-1")
	if err != nil {
		t.Fatalf("unexpected err %v", err)
	}
	if res.State != dom.KycUndecided || !res.Exhausted {
		t.Fatalf("want exhausted Undecided, got %+v", res)
	}
	if src.calls != 6 || res.Attempts != 6 {
		t.Fatalf("want 6 samples, got %d", src.calls)
	}
	for _, d := range clk.Sleeps() {
		if d != 5*time.Second {
			t.Fatalf("unexpected wait %s", d)
		}
	}
	if len(rec.recs) != 1 || rec.recs[0].State != string(dom.KycUndecided) || rec.recs[0].Kind != dom.KindKYC {
		t.Fatalf("outcome not recorded: %+v", rec.recs)
	}
}

func TestPollForKycState_VerifiedOnSecondSample(t *testing.T) {
	src := &tierSeq{seq: []dom.Tiers{pending(), gold()}}
	el := &eligibility{ok: true}
	s, _ := newSvc(Options{Tiers: src, Eligibility: el})

	res, err := s.PollForKycState(context.Background(), "u-1")
	if err != nil {
		t.Fatalf("unexpected err %v", err)
	}
	if res.State != dom.KycVerifiedEligible || res.Exhausted || src.calls != 2 {
		t.Fatalf("want VerifiedEligible after 2 samples, got %+v after %d", res, src.calls)
	}
	if el.calls != 1 {
		t.Fatalf("eligibility must be looked up once, got %d", el.calls)
	}
}

func TestPollForKycState_Classification(t *testing.T) {
	cases := []struct {
		name  string
		tiers dom.Tiers
		elig  bool
		want  dom.KycState
	}{
		{"gold ineligible", gold(), false, dom.KycVerifiedIneligible},
		{"silver rejected", dom.Tiers{dom.TierSilver: dom.TierRejected}, false, dom.KycFailed},
		{"gold rejected", dom.Tiers{dom.TierSilver: dom.TierVerified, dom.TierGold: dom.TierRejected}, false, dom.KycFailed},
		{"silver in review", dom.Tiers{dom.TierSilver: dom.TierUnderReview}, false, dom.KycInReview},
		{"gold in review", dom.Tiers{dom.TierSilver: dom.TierVerified, dom.TierGold: dom.TierUnderReview}, false, dom.KycInReview},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			src := &tierSeq{seq: []dom.Tiers{tc.tiers}}
			s, _ := newSvc(Options{Tiers: src, Eligibility: &eligibility{ok: tc.elig}})
			res, err := s.PollForKycState(context.Background(), "u-1")
			if err != nil {
				t.Fatalf("unexpected err %v", err)
			}
			if res.State != tc.want || src.calls != 1 {
				t.Fatalf("want %s after 1 sample, got %s after %d", tc.want, res.State, src.calls)
			}
		})
	}
}

func TestPollForKycState_SourceErrorSettlesAtOnce(t *testing.T) {
	src := &tierSeq{seq: []dom.Tiers{gold()}, errAt: map[int]error{1: errors.New("tiers down")}}
	s, clk := newSvc(Options{Tiers: src, Eligibility: &eligibility{ok: true}})

	res, err := s.PollForKycState(context.Background(), "u-1")
	if err != nil {
		t.Fatalf("unexpected err %v", err)
	}
	if res.State != dom.KycUndecided || src.calls != 1 || len(clk.Sleeps()) != 0 {
		t.Fatalf("want immediate Undecided, got %+v after %d calls", res, src.calls)
	}
	if res.LastError == "" {
		t.Fatalf("last error should be reported")
	}

	el := &eligibility{err: errors.New("eligibility down")}
	s, _ = newSvc(Options{Tiers: &tierSeq{seq: []dom.Tiers{gold()}}, Eligibility: el})
	res, _ = s.PollForKycState(context.Background(), "u-1")
	if res.State != dom.KycUndecided {
		t.Fatalf("eligibility error should settle as Undecided, got %s", res.State)
	}
}

func TestCheckTierLevel_SingleSampleGoldScope(t *testing.T) {
	cases := []struct {
		name  string
		tiers dom.Tiers
		want  dom.KycState
	}{
		{"gold pending reads as review", pending(), dom.KycInReview},
		{"silver rejected is ignored", dom.Tiers{dom.TierSilver: dom.TierRejected}, dom.KycPending},
		{"silver review is ignored", dom.Tiers{dom.TierSilver: dom.TierUnderReview}, dom.KycPending},
		{"gold rejected", dom.Tiers{dom.TierGold: dom.TierRejected}, dom.KycFailed},
		{"nothing submitted", dom.Tiers{}, dom.KycPending},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			src := &tierSeq{seq: []dom.Tiers{tc.tiers}}
			s, clk := newSvc(Options{Tiers: src, Eligibility: &eligibility{}})
			res, err := s.CheckTierLevel(context.Background(), "u-1")
			if err != nil {
				t.Fatalf("unexpected err %v", err)
			}
			if res.State != tc.want {
				t.Fatalf("want %s, got %s", tc.want, res.State)
			}
			if src.calls != 1 || len(clk.Sleeps()) != 0 {
				t.Fatalf("snapshot must sample once without waiting")
			}
		})
	}

	src := &tierSeq{seq: []dom.Tiers{gold()}, errAt: map[int]error{1: errors.New("x")}}
	s, _ := newSvc(Options{Tiers: src, Eligibility: &eligibility{}})
	res, _ := s.CheckTierLevel(context.Background(), "u-1")
	if res.State != dom.KycPending {
		t.Fatalf("snapshot error should read Pending, got %s", res.State)
	}
}

func TestPollOrderStatus_StopsOnFinished(t *testing.T) {
	src := &orderSeq{states: []dom.OrderState{dom.OrderPendingDeposit, dom.OrderPendingExecution, dom.OrderFinished}}
	s, _ := newSvc(Options{Orders: src})

	res, err := s.PollOrderStatus(context.Background(), "o-1")
	if err != nil {
		t.Fatalf("unexpected err %v", err)
	}
	if res.Order.State != dom.OrderFinished || res.Exhausted || src.calls != 3 {
		t.Fatalf("want Finished after 3 samples, got %+v after %d", res, src.calls)
	}
}

func TestPollOrderStatus_ExhaustionKeepsLastValue(t *testing.T) {
	src := &orderSeq{states: []dom.OrderState{dom.OrderPendingConfirmation, dom.OrderDepositMatched}}
	s, _ := newSvc(Options{Orders: src})

	res, err := s.PollOrderStatus(context.Background(), "o-1")
	if err != nil {
		t.Fatalf("unexpected err %v", err)
	}
	if !res.Exhausted || res.Order.State != dom.OrderDepositMatched || src.calls != 20 {
		t.Fatalf("want Exhausted(DepositMatched) after 20, got %+v after %d", res, src.calls)
	}
}

func TestPollOrderStatus_Errors(t *testing.T) {
	src := &orderSeq{err: perr.ErrNotFound}
	s, _ := newSvc(Options{Orders: src})
	if _, err := s.PollOrderStatus(context.Background(), "o-404"); !perr.IsCode(err, perr.ErrorCodeNotFound) {
		t.Fatalf("want not found, got %v", err)
	}
	if src.calls != 1 {
		t.Fatalf("missing order must not be retried, got %d calls", src.calls)
	}

	src = &orderSeq{err: errors.New("timeout")}
	s, _ = newSvc(Options{Orders: src, Policies: PolicySet{
		KYC: Policy{time.Second, 1}, Order: Policy{time.Second, 3}, Card: Policy{time.Second, 1},
	}})
	if _, err := s.PollOrderStatus(context.Background(), "o-1"); !perr.IsCode(err, perr.ErrorCodeUnavailable) {
		t.Fatalf("want unavailable, got %v", err)
	}
	if src.calls != 3 {
		t.Fatalf("transient errors are observations, want 3 calls got %d", src.calls)
	}

	if _, err := s.PollOrderStatus(context.Background(), ""); !perr.IsCode(err, perr.ErrorCodeInvalidArgument) {
		t.Fatalf("empty id should be rejected, got %v", err)
	}
}

func TestPollCardStatus_ActiveStopsImmediately(t *testing.T) {
	src := &cardSeq{statuses: []dom.CardStatus{dom.CardActive}}
	s, _ := newSvc(Options{Cards: src})
	res, err := s.PollCardStatus(context.Background(), "c-1")
	if err != nil || res.Card.Status != dom.CardActive || src.calls != 1 {
		t.Fatalf("want Active after 1 sample, got %+v %v", res, err)
	}

	src = &cardSeq{statuses: []dom.CardStatus{dom.CardCreated, dom.CardPending}}
	s, _ = newSvc(Options{Cards: src})
	res, err = s.PollCardStatus(context.Background(), "c-1")
	if err != nil || !res.Exhausted || res.Card.Status != dom.CardPending || src.calls != 24 {
		t.Fatalf("want Exhausted(Pending) after 24, got %+v after %d", res, src.calls)
	}
}

func TestRecorderFailureIsNotSurfaced(t *testing.T) {
	rec := &recorder{err: errors.New("clickhouse down")}
	s, _ := newSvc(Options{Cards: &cardSeq{statuses: []dom.CardStatus{dom.CardBlocked}}, Recorder: rec})
	res, err := s.PollCardStatus(context.Background(), "c-1")
	if err != nil || res.Card.Status != dom.CardBlocked {
		t.Fatalf("recorder failure must not fail the call: %+v %v", res, err)
	}
	if len(rec.recs) != 1 || rec.recs[0].ID == "" || rec.recs[0].At.IsZero() {
		t.Fatalf("record not attempted: %+v", rec.recs)
	}
}

func TestConcurrentPollsAreIndependent(t *testing.T) {
	done := make(chan error, 8)
	for i := 0; i < 8; i++ {
		go func() {
			src := &orderSeq{states: []dom.OrderState{dom.OrderPendingDeposit, dom.OrderCanceled}}
			local := New(Options{Orders: src, Clock: ptime.NewFake(time.Unix(0, 0))})
			res, err := local.PollOrderStatus(context.Background(), "o")
			if err == nil && (res.Order.State != dom.OrderCanceled || src.calls != 2) {
				err = errors.New("unexpected outcome")
			}
			done <- err
		}()
	}
	for i := 0; i < 8; i++ {
		if err := <-done; err != nil {
			t.Fatal(err)
		}
	}
}

func TestHistory_RequiresReader(t *testing.T) {
	s, _ := newSvc(Options{})
	if _, err := s.History(context.Background(), dom.HistoryQuery{Subject: "o-1"}); !perr.IsCode(err, perr.ErrorCodeUnavailable) {
		t.Fatalf("want unavailable, got %v", err)
	}
}
