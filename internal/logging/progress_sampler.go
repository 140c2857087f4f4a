package logging

import "strings"

// ProgressSampler thins a stream of progress events down to the ones worth
// keeping: phase boundaries, message changes and percentage bucket crossings.
type ProgressSampler struct {
	bucketSize  float64
	lastMessage string
	lastBucket  int
}

// NewProgressSampler constructs a sampler that keeps an advance each time the
// percent crosses a bucket boundary (default 10%).
func NewProgressSampler(bucketSize float64) *ProgressSampler {
	if bucketSize <= 0 {
		bucketSize = 10
	}
	return &ProgressSampler{bucketSize: bucketSize, lastBucket: -1}
}

// ShouldRecord reports whether evt should be kept. A nil sampler keeps all.
func (s *ProgressSampler) ShouldRecord(evt ProgressEvent) bool {
	if s == nil {
		return true
	}
	switch evt.Phase {
	case ProgressStarted:
		s.Reset()
		s.lastMessage = strings.TrimSpace(evt.Message)
		s.lastBucket = 0
		return true
	case ProgressCompleted:
		s.Reset()
		return true
	case ProgressStalled:
		return true
	}
	return s.ShouldLog(evt.Percent, evt.Message)
}

// ShouldLog reports whether a percent/message pair crosses into a new bucket
// or carries a new message. Negative percents mean "unknown".
func (s *ProgressSampler) ShouldLog(percent float64, message string) bool {
	if s == nil {
		return true
	}
	message = strings.TrimSpace(message)
	emit := false
	if message != "" && message != s.lastMessage {
		s.lastMessage = message
		s.lastBucket = -1
		emit = true
	}
	if percent >= 0 {
		bucket := int(percent / s.bucketSize)
		if percent >= 100 {
			bucket = int(100 / s.bucketSize)
		}
		if bucket > s.lastBucket {
			s.lastBucket = bucket
			emit = true
		}
	}
	return emit
}

// Reset clears the sampler state.
func (s *ProgressSampler) Reset() {
	if s == nil {
		return
	}
	s.lastMessage = ""
	s.lastBucket = -1
}
