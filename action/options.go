package action

import (
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cast"

	"github.com/mensylisir/xmrecipes/outcome"
)

// Recognized option keys that shape the resulting outcome node's policy.
const (
	OptStartNow       = "startNow"
	OptBubbleError    = "bubbleError"
	OptBubbleFailure  = "bubbleFailure"
	OptFailureIsError = "failureIsError"
)

// Options is the caller-defined option bag handed to an action. Policy
// keys are read by the runner; everything else belongs to the action body.
type Options map[string]interface{}

// Get returns the raw value for key.
func (o Options) Get(key string) (interface{}, bool) {
	v, ok := o[key]
	return v, ok
}

// GetString returns the value for key cast to string.
func (o Options) GetString(key string) (string, bool) {
	v, ok := o[key]
	if !ok {
		return "", false
	}
	return cast.ToString(v), true
}

// GetInt returns the value for key cast to int.
func (o Options) GetInt(key string) (int, bool) {
	v, ok := o[key]
	if !ok {
		return 0, false
	}
	return cast.ToInt(v), true
}

// GetBool returns the value for key cast to bool. Missing keys are false.
func (o Options) GetBool(key string) bool {
	return cast.ToBool(o[key])
}

// GetStringSlice returns the value for key cast to []string.
func (o Options) GetStringSlice(key string) ([]string, bool) {
	v, ok := o[key]
	if !ok {
		return nil, false
	}
	return cast.ToStringSlice(v), true
}

// NodeOptions extracts the outcome policy flags from the recognized keys.
func (o Options) NodeOptions() outcome.Options {
	return outcome.Options{
		StartNow:       o.GetBool(OptStartNow),
		BubbleError:    o.GetBool(OptBubbleError),
		BubbleFailure:  o.GetBool(OptBubbleFailure),
		FailureIsError: o.GetBool(OptFailureIsError),
	}
}

// Require fails with a descriptive error when any of the named keys is
// absent. Used by the runner's VALIDATE phase.
func (o Options) Require(keys ...string) error {
	var missing []string
	for _, k := range keys {
		if _, ok := o[k]; !ok {
			missing = append(missing, k)
		}
	}
	if len(missing) > 0 {
		return errors.Errorf("missing required options: %s", strings.Join(missing, ", "))
	}
	return nil
}
