package workflow

import (
	"slices"
	"strings"
	"time"
)

// stepDecision returns the first recorded decision for step, or nil.
func stepDecision(approvals []Approval, step Step) *Decision {
	for _, a := range approvals {
		if a.Step == step && a.Decision != nil {
			return a.Decision
		}
	}
	return nil
}

// NextStep returns the step awaiting a decision, or one of NextDraft,
// NextRejected and NextDone.
func NextStep(req Request) string {
	switch req.Status {
	case StatusDraft:
		return NextDraft
	case StatusRejected:
		return NextRejected
	case StatusApproved:
		return NextDone
	}

	for _, step := range ApprovalSteps {
		d := stepDecision(req.Approvals, step)
		if d == nil {
			return string(step)
		}
		if *d == DecisionRejected {
			return NextRejected
		}
	}
	return NextDone
}

// Submit moves a Draft request to Pending and seeds the Manager placeholder.
func Submit(req Request, at time.Time) (Request, error) {
	if req.Status != StatusDraft {
		return req, &InvalidTransitionError{From: req.Status, Action: "submit"}
	}
	out := clone(req)
	out.Status = StatusPending
	if !hasApprovalEntries(out.Approvals) {
		out.Approvals = append(out.Approvals, Approval{Step: StepManager, Date: at})
	}
	out.UpdatedAt = at
	return out, nil
}

// RecordDecision appends a decision for step. The step must be the one
// NextStep returns; a rejection ends the request immediately.
func RecordDecision(req Request, step Step, decision Decision, approverID, comment string, at time.Time) (Request, error) {
	if req.Status != StatusPending {
		return req, &InvalidTransitionError{From: req.Status, Action: "decide"}
	}
	if !decision.IsValid() {
		return req, ErrInvalidDecision
	}
	expected := NextStep(req)
	if string(step) != expected {
		return req, &OutOfSequenceError{Expected: expected, Got: step}
	}

	out := clone(req)
	d := decision
	entry := Approval{Step: step, Decision: &d, Comment: strings.TrimSpace(comment), Date: at}
	if approverID != "" {
		id := approverID
		entry.ApproverID = &id
	}
	out.Approvals = append(out.Approvals, entry)

	switch {
	case decision == DecisionRejected:
		out.Status = StatusRejected
	case step == ApprovalSteps[len(ApprovalSteps)-1]:
		out.Status = StatusApproved
	}
	out.UpdatedAt = at
	return out, nil
}

// AddComment appends a non-deciding entry. Legal in every status.
func AddComment(req Request, authorID, text string, at time.Time) (Request, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return req, ErrEmptyComment
	}
	out := clone(req)
	entry := Approval{Step: StepComment, Comment: text, Date: at}
	if authorID != "" {
		id := authorID
		entry.ApproverID = &id
	}
	out.Approvals = append(out.Approvals, entry)
	out.UpdatedAt = at
	return out, nil
}

// AddAttachment appends file metadata. Attachments are never removed.
func AddAttachment(req Request, att Attachment, at time.Time) Request {
	out := clone(req)
	if att.UploadedAt.IsZero() {
		att.UploadedAt = at
	}
	out.Attachments = append(out.Attachments, att)
	out.UpdatedAt = at
	return out
}

// CheckInvariants verifies that Status agrees with the approvals log.
func CheckInvariants(req Request) error {
	if !req.Status.IsValid() {
		return &InvariantError{Reason: "unknown status " + string(req.Status)}
	}

	var decided []Step
	rejected := false
	for _, a := range req.Approvals {
		if a.Decision == nil {
			continue
		}
		if !a.Step.IsApprovalStep() {
			return &InvariantError{Reason: "decision recorded on a " + string(a.Step) + " entry"}
		}
		if !a.Decision.IsValid() {
			return &InvariantError{Reason: "unknown decision " + string(*a.Decision)}
		}
		if rejected {
			return &InvariantError{Reason: "decision recorded after a rejection"}
		}
		if slices.Contains(decided, a.Step) {
			return &InvariantError{Reason: "step " + string(a.Step) + " decided twice"}
		}
		if len(decided) >= len(ApprovalSteps) || ApprovalSteps[len(decided)] != a.Step {
			return &InvariantError{Reason: "step " + string(a.Step) + " decided out of order"}
		}
		decided = append(decided, a.Step)
		if *a.Decision == DecisionRejected {
			rejected = true
		}
	}
	allApproved := !rejected && len(decided) == len(ApprovalSteps)

	switch req.Status {
	case StatusDraft:
		if hasApprovalEntries(req.Approvals) {
			return &InvariantError{Reason: "draft request has approval entries"}
		}
	case StatusPending:
		if rejected {
			return &InvariantError{Reason: "pending request holds a rejection"}
		}
		if allApproved {
			return &InvariantError{Reason: "pending request is fully approved"}
		}
	case StatusRejected:
		if !rejected {
			return &InvariantError{Reason: "rejected request has no rejection entry"}
		}
	case StatusApproved:
		if !allApproved {
			return &InvariantError{Reason: "approved request is missing step approvals"}
		}
	}
	return nil
}

func hasApprovalEntries(approvals []Approval) bool {
	for _, a := range approvals {
		if a.Step.IsApprovalStep() {
			return true
		}
	}
	return false
}

func clone(req Request) Request {
	out := req
	out.Approvals = slices.Clone(req.Approvals)
	out.Attachments = slices.Clone(req.Attachments)
	return out
}
