// Package metrics names the metrics the hostel services emit and keeps their tag sets consistent.
package metrics

import (
	"strconv"
	"time"

	obserrors "github.com/hostelhub/hostel-api/internal/observability/errors"
	"github.com/hostelhub/hostel-api/internal/observability/statsd"
)

// Result tag values.
const (
	ResultSuccess = "success"
	ResultError   = "error"
	ResultDenied  = "denied"
	ResultSkipped = "skipped"
)

// Resolution describes one identity resolution (role lookup plus profile load).
type Resolution struct {
	Result   string
	Fresh    bool
	IsAdmin  bool
	Duration time.Duration
	Err      error
}

// EmitResolution records auth.resolve and auth.resolve.duration.
func EmitResolution(sink statsd.Sink, in Resolution) {
	if sink == nil {
		return
	}
	tags := withError(map[string]string{
		"result": in.Result,
		"fresh":  strconv.FormatBool(in.Fresh),
		"admin":  strconv.FormatBool(in.IsAdmin),
	}, in.Result, in.Err)

	sink.Count("auth.resolve", 1, tags)
	if in.Duration > 0 {
		sink.Timing("auth.resolve.duration", in.Duration, CloneTags(tags))
	}
}

// SignIn describes a sign-in, sign-up or SSO callback attempt.
type SignIn struct {
	Method string
	Result string
	Err    error
}

// EmitSignIn records auth.signin.
func EmitSignIn(sink statsd.Sink, in SignIn) {
	if sink == nil {
		return
	}
	sink.Count("auth.signin", 1, withError(map[string]string{
		"method": in.Method,
		"result": in.Result,
	}, in.Result, in.Err))
}

// Submission describes a complaint or leave application being filed.
type Submission struct {
	Kind   string
	Result string
	Err    error
}

// EmitSubmission records hostel.submission.
func EmitSubmission(sink statsd.Sink, in Submission) {
	if sink == nil {
		return
	}
	sink.Count("hostel.submission", 1, withError(map[string]string{
		"kind":   in.Kind,
		"result": in.Result,
	}, in.Result, in.Err))
}

// Sweep describes one pass of the notice freshness sweeper.
type Sweep struct {
	Cleared  int64
	Duration time.Duration
	Err      error
}

// EmitSweep records notice.sweep, notice.sweep.cleared and notice.sweep.duration.
func EmitSweep(sink statsd.Sink, in Sweep) {
	if sink == nil {
		return
	}
	result := ResultSuccess
	if in.Err != nil {
		result = ResultError
	}
	tags := withError(map[string]string{"result": result}, result, in.Err)

	sink.Count("notice.sweep", 1, tags)
	if in.Err == nil {
		sink.Count("notice.sweep.cleared", in.Cleared, nil)
	}
	if in.Duration > 0 {
		sink.Timing("notice.sweep.duration", in.Duration, CloneTags(tags))
	}
}

// Delivery describes one staff notification sent to one sink.
type Delivery struct {
	Sink     string
	Kind     string
	Result   string
	Duration time.Duration
	Err      error
}

// EmitDelivery records notify.delivery and notify.delivery.duration.
func EmitDelivery(sink statsd.Sink, in Delivery) {
	if sink == nil {
		return
	}
	tags := withError(map[string]string{
		"sink":   in.Sink,
		"kind":   in.Kind,
		"result": in.Result,
	}, in.Result, in.Err)

	sink.Count("notify.delivery", 1, tags)
	if in.Duration > 0 {
		sink.Timing("notify.delivery.duration", in.Duration, CloneTags(tags))
	}
}

func withError(tags map[string]string, result string, err error) map[string]string {
	if err != nil && result == ResultError {
		if class := obserrors.Classify(err); class != "" {
			tags["error_class"] = class
		}
	}
	return tags
}

// CloneTags returns a shallow copy of src, or nil when src is empty.
func CloneTags(src map[string]string) map[string]string {
	if len(src) == 0 {
		return nil
	}
	out := make(map[string]string, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out
}
