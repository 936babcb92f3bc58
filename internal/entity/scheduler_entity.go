package entity

import "time"

const SchedulerHistoryLimit = 20

// ReminderBucketLayout truncates a UTC instant to its hour.
const ReminderBucketLayout = "2006-01-02T15"

// ReminderBucket returns the hour window used to deduplicate reminders.
func ReminderBucket(t time.Time) string {
	return t.UTC().Format(ReminderBucketLayout)
}

// SendResult summarises one dispatch across the enabled channels.
type SendResult struct {
	Attempted      int             `json:"attempted"`
	SuccessCount   int             `json:"successCount"`
	FailedCount    int             `json:"failedCount"`
	ChannelResults map[string]bool `json:"channelResults"`
}

func NewSendResult() *SendResult {
	return &SendResult{ChannelResults: map[string]bool{}}
}

func (r *SendResult) Record(channel string, ok bool) {
	r.Attempted++
	r.ChannelResults[channel] = ok
	if ok {
		r.SuccessCount++
	} else {
		r.FailedCount++
	}
}

// SchedulerRunStatus records the outcome of one evaluation pass.
type SchedulerRunStatus struct {
	LastRunAt            time.Time   `json:"lastRunAt"`
	FinishedAt           time.Time   `json:"finishedAt"`
	Source               string      `json:"source,omitempty"`
	Timezone             string      `json:"timezone"`
	CurrentHour          string      `json:"currentHour"`
	ConfiguredHours      []string    `json:"configuredHours"`
	ShouldNotifyThisHour bool        `json:"shouldNotifyThisHour"`
	CheckedSubscriptions int         `json:"checkedSubscriptions"`
	ActiveSubscriptions  int         `json:"activeSubscriptions"`
	ExpiringMatched      int         `json:"expiringMatched"`
	DedupeSkipped        int         `json:"dedupeSkipped"`
	UpdatedSubscriptions int         `json:"updatedSubscriptions"`
	Sent                 bool        `json:"sent"`
	SendResult           *SendResult `json:"sendResult"`
	Reason               string      `json:"reason"`
	Error                string      `json:"error,omitempty"`
}
