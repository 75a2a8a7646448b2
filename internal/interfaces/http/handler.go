package httpinterface

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/stellrflow/anchord/internal/core/application"
	"github.com/stellrflow/anchord/internal/core/domain"
	chatinterface "github.com/stellrflow/anchord/internal/interfaces/chat"
)

type rampHandler struct {
	rampSvc application.RampService
	bot     chatinterface.Bot
}

func newRampHandler(
	rampSvc application.RampService, bot chatinterface.Bot,
) *rampHandler {
	return &rampHandler{rampSvc, bot}
}

func (h *rampHandler) quickDeposit(c *fiber.Ctx) error {
	var req depositRequest
	if err := c.BodyParser(&req); err != nil {
		return errInvalidBody(err)
	}
	result := h.rampSvc.QuickDeposit(c.UserContext(), req.toApp())
	return c.Status(statusOf(result.Success, result.Kind)).
		JSON(newDepositResponse(result))
}

func (h *rampHandler) createDeposit(c *fiber.Ctx) error {
	var req depositRequest
	if err := c.BodyParser(&req); err != nil {
		return errInvalidBody(err)
	}
	result := h.rampSvc.CreateDeposit(c.UserContext(), req.toApp())
	status := statusOf(result.Success, result.Kind)
	if result.Success {
		status = fiber.StatusCreated
	}
	return c.Status(status).JSON(newDepositResponse(result))
}

func (h *rampHandler) confirmDeposit(c *fiber.Ctx) error {
	var req confirmDepositRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return errInvalidBody(err)
		}
	}
	result := h.rampSvc.ConfirmDeposit(
		c.UserContext(), application.ConfirmDepositRequest{
			DepositID:          c.Params("id"),
			DestinationAddress: req.DestinationAddress,
			Credential:         req.SecretKey,
		},
	)
	return c.Status(statusOf(result.Success, result.Kind)).
		JSON(newDepositResponse(result))
}

func (h *rampHandler) cancelDeposit(c *fiber.Ctx) error {
	result := h.rampSvc.CancelDeposit(c.UserContext(), c.Params("id"))
	return c.Status(statusOf(result.Success, result.Kind)).JSON(cancelResponse{
		Success: result.Success,
		Message: result.Message,
		Kind:    string(result.Kind),
	})
}

func (h *rampHandler) getDeposit(c *fiber.Ctx) error {
	result := h.rampSvc.GetDeposit(c.UserContext(), c.Params("id"))
	return c.Status(statusOf(result.Success, result.Kind)).
		JSON(newDepositResponse(result))
}

func (h *rampHandler) estimateDeposit(c *fiber.Ctx) error {
	result := h.rampSvc.EstimateDeposit(c.Query("amount"), c.Query("currency"))
	resp := depositQuoteResponse{
		Success: result.Success,
		Message: result.Message,
		Kind:    string(result.Kind),
	}
	if q := result.DepositQuote; q != nil {
		resp.FiatAmount = q.FiatAmount.StringFixed(domain.FiatPrecision)
		resp.Currency = q.Currency
		resp.Rate = q.Rate.String()
		resp.EstimatedValue = q.EstimatedValue.String()
	}
	return c.Status(statusOf(result.Success, result.Kind)).JSON(resp)
}

func (h *rampHandler) quickWithdrawal(c *fiber.Ctx) error {
	var req withdrawalRequest
	if err := c.BodyParser(&req); err != nil {
		return errInvalidBody(err)
	}
	result := h.rampSvc.QuickWithdrawal(c.UserContext(), req.toApp())
	return c.Status(statusOf(result.Success, result.Kind)).
		JSON(newWithdrawalResponse(result))
}

func (h *rampHandler) createWithdrawal(c *fiber.Ctx) error {
	var req withdrawalRequest
	if err := c.BodyParser(&req); err != nil {
		return errInvalidBody(err)
	}
	result := h.rampSvc.CreateWithdrawal(c.UserContext(), req.toApp())
	status := statusOf(result.Success, result.Kind)
	if result.Success {
		status = fiber.StatusCreated
	}
	return c.Status(status).JSON(newWithdrawalResponse(result))
}

func (h *rampHandler) confirmWithdrawal(c *fiber.Ctx) error {
	var req confirmWithdrawalRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return errInvalidBody(err)
		}
	}
	result := h.rampSvc.ConfirmWithdrawal(
		c.UserContext(), application.ConfirmWithdrawalRequest{
			WithdrawalID:    c.Params("id"),
			SourceAddress:   req.SourceAddress,
			Credential:      req.SecretKey,
			TreasuryAddress: req.TreasuryAddress,
		},
	)
	return c.Status(statusOf(result.Success, result.Kind)).
		JSON(newWithdrawalResponse(result))
}

func (h *rampHandler) cancelWithdrawal(c *fiber.Ctx) error {
	result := h.rampSvc.CancelWithdrawal(c.UserContext(), c.Params("id"))
	return c.Status(statusOf(result.Success, result.Kind)).JSON(cancelResponse{
		Success: result.Success,
		Message: result.Message,
		Kind:    string(result.Kind),
	})
}

func (h *rampHandler) getWithdrawal(c *fiber.Ctx) error {
	result := h.rampSvc.GetWithdrawal(c.UserContext(), c.Params("id"))
	return c.Status(statusOf(result.Success, result.Kind)).
		JSON(newWithdrawalResponse(result))
}

func (h *rampHandler) estimateWithdrawal(c *fiber.Ctx) error {
	result := h.rampSvc.EstimateWithdrawal(c.Query("value"), c.Query("currency"))
	resp := withdrawalQuoteResponse{
		Success: result.Success,
		Message: result.Message,
		Kind:    string(result.Kind),
	}
	if q := result.WithdrawalQuote; q != nil {
		resp.Value = q.Value.String()
		resp.Currency = q.Currency
		resp.Rate = q.Rate.String()
		resp.EstimatedFiatPayout = q.EstimatedFiatPayout.StringFixed(domain.FiatPrecision)
		resp.ETA = q.ETA
	}
	return c.Status(statusOf(result.Success, result.Kind)).JSON(resp)
}

func (h *rampHandler) connectAddress(c *fiber.Ctx) error {
	var req connectRequest
	if err := c.BodyParser(&req); err != nil {
		return errInvalidBody(err)
	}
	result := h.rampSvc.ConnectAddress(
		c.UserContext(), userOrChat(req.UserID, req.ChatID), req.Address,
	)
	return c.Status(statusOf(result.Success, result.Kind)).
		JSON(newAddressResponse(result))
}

func (h *rampHandler) connectedAddress(c *fiber.Ctx) error {
	result := h.rampSvc.ConnectedAddress(c.UserContext(), c.Params("userId"))
	status := statusOf(result.Success, result.Kind)
	// A user with no connected address is not a malformed request.
	if result.Kind == application.KindValidationFailure {
		status = fiber.StatusNotFound
	}
	return c.Status(status).JSON(newAddressResponse(result))
}

func (h *rampHandler) rates(c *fiber.Ctx) error {
	rates := h.rampSvc.Rates()
	views := make([]rateView, 0, len(rates))
	for _, r := range rates {
		views = append(views, rateView{
			Currency:    r.Currency,
			FiatToValue: r.FiatToValue.String(),
			ValueToFiat: r.ValueToFiat.String(),
		})
	}
	return c.JSON(ratesResponse{
		Success: true,
		Asset:   application.NativeAssetCode,
		Rates:   views,
	})
}

func (h *rampHandler) history(c *fiber.Ctx) error {
	page, err := parsePage(c)
	if err != nil {
		return err
	}

	result := h.rampSvc.History(c.UserContext(), c.Params("userId"), page)
	resp := historyResponse{
		Success:     result.Success,
		Deposits:    make([]depositView, 0, len(result.Deposits)),
		Withdrawals: make([]withdrawalView, 0, len(result.Withdrawals)),
		Message:     result.Message,
		Kind:        string(result.Kind),
	}
	for _, d := range result.Deposits {
		resp.Deposits = append(resp.Deposits, newDepositView(d))
	}
	for _, w := range result.Withdrawals {
		resp.Withdrawals = append(resp.Withdrawals, newWithdrawalView(w))
	}
	return c.Status(statusOf(result.Success, result.Kind)).JSON(resp)
}

func (h *rampHandler) botCommand(c *fiber.Ctx) error {
	var req botCommandRequest
	if err := c.BodyParser(&req); err != nil {
		return errInvalidBody(err)
	}
	if req.ChatID.String() == "" {
		return fiber.NewError(fiber.StatusBadRequest, "missing chat id")
	}

	reply := h.bot.HandleCommand(c.UserContext(), req.ChatID.String(), req.Text)
	return c.JSON(botCommandResponse{Success: true, Reply: reply})
}

func healthz(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

// parsePage reads the optional page and size query params. Without a page
// number the whole list is returned.
func parsePage(c *fiber.Ctx) (*domain.Page, error) {
	rawPage := c.Query("page")
	if rawPage == "" {
		return nil, nil
	}
	number, err := strconv.Atoi(rawPage)
	if err != nil || number <= 0 {
		return nil, fiber.NewError(
			fiber.StatusBadRequest, "page must be a positive integer",
		)
	}
	size, err := strconv.Atoi(c.Query("size", strconv.Itoa(defaultPageSize)))
	if err != nil || size <= 0 {
		return nil, fiber.NewError(
			fiber.StatusBadRequest, "size must be a positive integer",
		)
	}
	pg := domain.NewPage(number, size)
	return &pg, nil
}

func statusOf(success bool, kind application.FailureKind) int {
	if success {
		return fiber.StatusOK
	}
	switch kind {
	case application.KindNotFound:
		return fiber.StatusNotFound
	case application.KindValidationFailure:
		return fiber.StatusBadRequest
	case application.KindInvalidState:
		return fiber.StatusConflict
	default:
		return fiber.StatusUnprocessableEntity
	}
}

func errInvalidBody(err error) error {
	return fiber.NewError(
		fiber.StatusBadRequest, "invalid request body: "+err.Error(),
	)
}
