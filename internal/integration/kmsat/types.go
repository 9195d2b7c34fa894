package kmsat

import (
	"net/url"
	"strconv"
)

// Command names accepted by the dispatcher.
const (
	CommandTestModule                 = "test-module"
	CommandGetAccountInfo             = "get-account-info"
	CommandGetAccountRiskScoreHistory = "get-account-risk-score-history"
	CommandGetUserEvents              = "get-user-events"
)

// User events paging used by get-user-events. Only the first page is read.
const (
	UserEventsPage     = 1
	UserEventsPageSize = 100
)

// EventQuery holds the optional user-events filters. Empty fields are
// omitted from the request.
type EventQuery struct {
	EventType      string
	TargetUser     string
	ExternalID     string
	Source         string
	OccurredDate   string
	RiskLevel      string
	RiskDecayMode  string
	RiskExpireDate string
	OrderBy        string
	OrderDirection string
}

// EventQueryArgs lists the argument names get-user-events understands, in
// the order they are sent.
var EventQueryArgs = []string{
	"event_type",
	"target_user",
	"external_id",
	"source",
	"occurred_date",
	"risk_level",
	"risk_decay_mode",
	"risk_expire_date",
	"order_by",
	"order_direction",
}

// EventQueryFromArgs builds a query from command arguments. Unknown
// arguments are ignored.
func EventQueryFromArgs(args map[string]string) EventQuery {
	return EventQuery{
		EventType:      args["event_type"],
		TargetUser:     args["target_user"],
		ExternalID:     args["external_id"],
		Source:         args["source"],
		OccurredDate:   args["occurred_date"],
		RiskLevel:      args["risk_level"],
		RiskDecayMode:  args["risk_decay_mode"],
		RiskExpireDate: args["risk_expire_date"],
		OrderBy:        args["order_by"],
		OrderDirection: args["order_direction"],
	}
}

// Values encodes the query with paging. Empty filters and non-positive
// page or pageSize values are dropped.
func (q EventQuery) Values(page, pageSize int) url.Values {
	v := url.Values{}
	set := func(key, value string) {
		if value != "" {
			v.Set(key, value)
		}
	}

	set("event_type", q.EventType)
	set("target_user", q.TargetUser)
	set("external_id", q.ExternalID)
	set("source", q.Source)
	set("occurred_date", q.OccurredDate)
	set("risk_level", q.RiskLevel)
	set("risk_decay_mode", q.RiskDecayMode)
	set("risk_expire_date", q.RiskExpireDate)
	set("order_by", q.OrderBy)
	set("order_direction", q.OrderDirection)

	if page > 0 {
		v.Set("page", strconv.Itoa(page))
	}
	if pageSize > 0 {
		v.Set("per_page", strconv.Itoa(pageSize))
	}
	return v
}
