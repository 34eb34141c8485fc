package controller

import (
	"swappay-be/internal/dto"
	"swappay-be/internal/pkg/apperror"
	"swappay-be/internal/pkg/serverutils"
	"swappay-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type ITradeController interface {
	RegisterRoutes(r fiber.Router)
	ToggleAcceptance(ctx *fiber.Ctx) error
	GetStatus(ctx *fiber.Ctx) error
	AppendTranscript(ctx *fiber.Ctx) error
	Reset(ctx *fiber.Ctx) error
	ListAll(ctx *fiber.Ctx) error
	Delete(ctx *fiber.Ctx) error
}

type tradeController struct {
	service service.ITradeAgreementService
}

func NewTradeController(service service.ITradeAgreementService) ITradeController {
	return &tradeController{service: service}
}

func (c *tradeController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/chat/trade")
	h.Use(serverutils.JwtMiddleware)
	h.Post("/accept", c.ToggleAcceptance)
	h.Get("/status/:chatRoomId", c.GetStatus)
	h.Post("/messages/:chatRoomId", c.AppendTranscript)

	h.Post("/reset", serverutils.AdminOnly, c.Reset)
	h.Get("/all", serverutils.AdminOnly, c.ListAll)
	h.Delete("/:chatRoomId", serverutils.AdminOnly, c.Delete)
}

func (c *tradeController) ToggleAcceptance(ctx *fiber.Ctx) error {
	actor, err := serverutils.CurrentActor(ctx)
	if err != nil {
		return err
	}

	var req dto.ToggleAcceptanceRequest
	if err := parseBody(ctx, &req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.ToggleAcceptance(ctx.UserContext(), req.ChatRoomId, actor.UserId)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse(res.Message, res))
}

func (c *tradeController) GetStatus(ctx *fiber.Ctx) error {
	roomId, err := uuidParam(ctx, "chatRoomId")
	if err != nil {
		return err
	}

	res, err := c.service.GetStatus(ctx.UserContext(), roomId)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get trade status", res))
}

func (c *tradeController) AppendTranscript(ctx *fiber.Ctx) error {
	roomId, err := uuidParam(ctx, "chatRoomId")
	if err != nil {
		return err
	}

	var req dto.AppendTranscriptRequest
	if err := parseBody(ctx, &req); err != nil {
		return err
	}
	if req.Entries == nil {
		return apperror.ValidationFailed("entries must be a list")
	}

	entries := make([]string, 0, len(req.Entries))
	for _, raw := range req.Entries {
		s, ok := raw.(string)
		if !ok {
			return apperror.ValidationFailed("entries must contain only strings")
		}
		entries = append(entries, s)
	}

	res, err := c.service.AppendTranscriptEntries(ctx.UserContext(), roomId, entries)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success append transcript", res))
}

func (c *tradeController) Reset(ctx *fiber.Ctx) error {
	var req dto.ResetTradeRequest
	if err := parseBody(ctx, &req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.Reset(ctx.UserContext(), req.ChatRoomId)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success reset trade", res))
}

func (c *tradeController) ListAll(ctx *fiber.Ctx) error {
	res, err := c.service.ListAll(ctx.UserContext())
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get all trades", res))
}

func (c *tradeController) Delete(ctx *fiber.Ctx) error {
	roomId, err := uuidParam(ctx, "chatRoomId")
	if err != nil {
		return err
	}

	if err := c.service.Delete(ctx.UserContext(), roomId); err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse[any]("Success delete trade", nil))
}
