package chatinterface

import (
	"fmt"
	"strings"

	"github.com/stellrflow/anchord/internal/core/application"
	"github.com/stellrflow/anchord/internal/core/domain"
)

const (
	welcomeReply = "*Welcome to the anchor bot!*\n" +
		"Move money between your bank and your ledger account."
	helpReply = "*Commands*\n" +
		"`/connect <address>` connect your ledger account\n" +
		"`/addfunds <amount> [currency]` deposit fiat\n" +
		"`/withdraw <value> [currency]` withdraw to fiat\n" +
		"`/rates` show exchange rates\n" +
		"`/txhistory` show your recent operations\n" +
		"`/depositstatus <id>` show a deposit\n" +
		"`/withdrawstatus <id>` show a withdrawal"
	unknownCommandReply = "Unknown command. Send /help to see what I can do."
	notConnectedReply   = "No address connected yet. Use `/connect <address>` first."
)

func formatDepositResult(r *application.DepositResult) string {
	if !r.Success {
		return failureReply(r.Message)
	}
	d := r.Deposit
	return fmt.Sprintf(
		"✅ *Deposit completed*\n"+
			"ID: `%s`\n"+
			"Paid: %s %s\n"+
			"Credited: %s %s\n"+
			"Reference: `%s`",
		d.ID, d.FiatAmount.StringFixed(domain.FiatPrecision), d.Currency,
		d.CreditedValue, application.NativeAssetCode, d.SettlementReference,
	)
}

func formatWithdrawalResult(r *application.WithdrawalResult) string {
	if !r.Success {
		return failureReply(r.Message)
	}
	w := r.Withdrawal
	return fmt.Sprintf(
		"✅ *Withdrawal completed*\n"+
			"ID: `%s`\n"+
			"Debited: %s %s\n"+
			"Payout: %s %s\n"+
			"ETA: %s\n"+
			"Reference: `%s`",
		w.ID, w.RequestedValue, application.NativeAssetCode,
		w.ActualFiatPayout.StringFixed(domain.FiatPrecision), w.Currency,
		w.EstimatedTimeToSettle, w.LedgerReference,
	)
}

func formatDepositStatus(r *application.DepositResult) string {
	if !r.Success {
		return failureReply(r.Message)
	}
	d := r.Deposit
	lines := []string{
		fmt.Sprintf("*Deposit* `%s`", d.ID),
		fmt.Sprintf("Status: %s", d.Status),
		fmt.Sprintf(
			"Amount: %s %s", d.FiatAmount.StringFixed(domain.FiatPrecision),
			d.Currency,
		),
		fmt.Sprintf(
			"Estimated: %s %s", d.EstimatedValue, application.NativeAssetCode,
		),
	}
	if d.IsCompleted() {
		lines = append(lines, fmt.Sprintf(
			"Credited: %s %s", d.CreditedValue, application.NativeAssetCode,
		))
	}
	if d.FailureReason != "" {
		lines = append(lines, fmt.Sprintf("Reason: %s", d.FailureReason))
	}
	return strings.Join(lines, "\n")
}

func formatWithdrawalStatus(r *application.WithdrawalResult) string {
	if !r.Success {
		return failureReply(r.Message)
	}
	w := r.Withdrawal
	lines := []string{
		fmt.Sprintf("*Withdrawal* `%s`", w.ID),
		fmt.Sprintf("Status: %s", w.Status),
		fmt.Sprintf("Value: %s %s", w.RequestedValue, application.NativeAssetCode),
		fmt.Sprintf(
			"Estimated payout: %s %s",
			w.EstimatedFiatPayout.StringFixed(domain.FiatPrecision), w.Currency,
		),
	}
	if w.IsCompleted() {
		lines = append(lines, fmt.Sprintf(
			"Payout: %s %s", w.ActualFiatPayout.StringFixed(domain.FiatPrecision),
			w.Currency,
		))
	}
	if w.FailureReason != "" {
		lines = append(lines, fmt.Sprintf("Reason: %s", w.FailureReason))
	}
	return strings.Join(lines, "\n")
}

func formatRates(rates []application.RateInfo) string {
	lines := []string{"*Exchange rates*"}
	for _, r := range rates {
		lines = append(lines, fmt.Sprintf(
			"1 %s = %s %s | 1 %s = %s %s",
			r.Currency, r.FiatToValue, application.NativeAssetCode,
			application.NativeAssetCode, r.ValueToFiat.StringFixed(4), r.Currency,
		))
	}
	return strings.Join(lines, "\n")
}

func formatHistory(r *application.HistoryResult) string {
	if !r.Success {
		return failureReply(r.Message)
	}
	if len(r.Deposits) == 0 && len(r.Withdrawals) == 0 {
		return "No operations yet."
	}

	lines := []string{"*Recent deposits*"}
	if len(r.Deposits) == 0 {
		lines = append(lines, "none")
	}
	for _, d := range lastDeposits(r.Deposits) {
		lines = append(lines, fmt.Sprintf(
			"`%s` %s %s, %s", d.ID,
			d.FiatAmount.StringFixed(domain.FiatPrecision), d.Currency, d.Status,
		))
	}

	lines = append(lines, "", "*Recent withdrawals*")
	if len(r.Withdrawals) == 0 {
		lines = append(lines, "none")
	}
	for _, w := range lastWithdrawals(r.Withdrawals) {
		lines = append(lines, fmt.Sprintf(
			"`%s` %s %s, %s", w.ID, w.RequestedValue,
			application.NativeAssetCode, w.Status,
		))
	}
	return strings.Join(lines, "\n")
}

func lastDeposits(list []domain.Deposit) []domain.Deposit {
	if len(list) > maxHistoryEntries {
		return list[len(list)-maxHistoryEntries:]
	}
	return list
}

func lastWithdrawals(list []domain.Withdrawal) []domain.Withdrawal {
	if len(list) > maxHistoryEntries {
		return list[len(list)-maxHistoryEntries:]
	}
	return list
}

func failureReply(message string) string {
	return "❌ " + message
}
