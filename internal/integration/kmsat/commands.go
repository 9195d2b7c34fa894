package kmsat

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/tombee/kmsat/internal/format"
	"github.com/tombee/kmsat/internal/operation"
	kmsaterrors "github.com/tombee/kmsat/pkg/errors"
)

// Output prefixes the host stores results under.
const (
	AccountInfoPrefix             = "KMSAT_Account_Info_Returned"
	AccountRiskScoreHistoryPrefix = "KMSAT_Account_Risk_Score_History_Returned"
	UserEventsPrefix              = "KMSAT_User_Events_Returned"
)

// handler runs one command against the dispatcher's clients.
type handler func(ctx context.Context, d *Dispatcher, args map[string]string) (*operation.Result, error)

var handlers = map[string]handler{
	CommandTestModule:                 testModule,
	CommandGetAccountInfo:             getAccountInfo,
	CommandGetAccountRiskScoreHistory: getAccountRiskScoreHistory,
	CommandGetUserEvents:              getUserEvents,
}

// testModule checks connectivity and the Reporting API key with an
// account-info read. Rejected keys become an AuthorizationError, every
// other failure a ConnectivityError.
func testModule(ctx context.Context, d *Dispatcher, _ map[string]string) (*operation.Result, error) {
	if _, err := d.account.GetAccountInfo(ctx); err != nil {
		if isAuthFailure(err) {
			return nil, &AuthorizationError{Cause: err}
		}
		var connErr *ConnectivityError
		if errors.As(err, &connErr) {
			return nil, err
		}
		return nil, &ConnectivityError{Cause: err}
	}
	return operation.TextResult("ok"), nil
}

func getAccountInfo(ctx context.Context, d *Dispatcher, _ map[string]string) (*operation.Result, error) {
	raw, err := d.account.GetAccountInfo(ctx)
	if err != nil {
		return nil, err
	}
	return tableResult(raw, AccountInfoPrefix, "Account_Info", "`account_info`")
}

func getAccountRiskScoreHistory(ctx context.Context, d *Dispatcher, _ map[string]string) (*operation.Result, error) {
	raw, err := d.account.GetAccountRiskScoreHistory(ctx)
	if err != nil {
		return nil, err
	}
	return tableResult(raw, AccountRiskScoreHistoryPrefix, "Account_Risk_Score_History", "`risk_score`")
}

func getUserEvents(ctx context.Context, d *Dispatcher, args map[string]string) (*operation.Result, error) {
	raw, err := d.userEvents.ListUserEvents(ctx, EventQueryFromArgs(args), UserEventsPage, UserEventsPageSize)
	if err != nil {
		return nil, err
	}
	return tableResult(raw, UserEventsPrefix, "KMSAT_User_Events", "user event `data`")
}

// tableResult wraps a response body. A nil body is a translation failure,
// never an empty result.
func tableResult(raw json.RawMessage, prefix, table, missing string) (*operation.Result, error) {
	if raw == nil {
		return nil, &kmsaterrors.TranslationError{Missing: missing}
	}

	readable, err := format.TableToMarkdown(table, raw)
	if err != nil {
		return nil, err
	}

	return &operation.Result{
		OutputsPrefix:   prefix,
		OutputsKeyField: "",
		RawResponse:     raw,
		ReadableOutput:  readable,
	}, nil
}
