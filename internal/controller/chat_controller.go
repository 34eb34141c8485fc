package controller

import (
	"swappay-be/internal/dto"
	"swappay-be/internal/pkg/serverutils"
	"swappay-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IChatController interface {
	RegisterRoutes(r fiber.Router)
	CreateRoom(ctx *fiber.Ctx) error
	ListRooms(ctx *fiber.Ctx) error
	ShowRoom(ctx *fiber.Ctx) error
	SetVisibility(ctx *fiber.Ctx) error
	DeleteRoom(ctx *fiber.Ctx) error
	ListMessages(ctx *fiber.Ctx) error
	SendMessage(ctx *fiber.Ctx) error
}

type chatController struct {
	service service.IChatRoomService
}

func NewChatController(service service.IChatRoomService) IChatController {
	return &chatController{service: service}
}

func (c *chatController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/chat")
	h.Use(serverutils.JwtMiddleware)
	h.Post("/create-room", c.CreateRoom)
	h.Get("/rooms", c.ListRooms)
	h.Get("/rooms/:id", c.ShowRoom)
	h.Put("/rooms/:id/visibility", c.SetVisibility)
	h.Delete("/rooms/:id", c.DeleteRoom)
	h.Get("/messages/:chatRoomId", c.ListMessages)
	h.Post("/messages/:chatRoomId", c.SendMessage)
}

func (c *chatController) CreateRoom(ctx *fiber.Ctx) error {
	actor, err := serverutils.CurrentActor(ctx)
	if err != nil {
		return err
	}

	var req dto.CreateRoomRequest
	if err := parseBody(ctx, &req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.CreateOrReuseRoom(ctx.UserContext(), actor.UserId, req.User2Id, req.SubjectId)
	if err != nil {
		return err
	}

	if !res.Reused {
		ctx.Status(fiber.StatusCreated)
	}
	return ctx.JSON(serverutils.SuccessResponse("Success create chat room", res))
}

func (c *chatController) ListRooms(ctx *fiber.Ctx) error {
	actor, err := serverutils.CurrentActor(ctx)
	if err != nil {
		return err
	}

	res, err := c.service.ListUserRooms(ctx.UserContext(), actor.UserId)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get chat rooms", res))
}

func (c *chatController) ShowRoom(ctx *fiber.Ctx) error {
	actor, err := serverutils.CurrentActor(ctx)
	if err != nil {
		return err
	}
	roomId, err := uuidParam(ctx, "id")
	if err != nil {
		return err
	}

	res, err := c.service.GetRoom(ctx.UserContext(), actor, roomId)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success show chat room", res))
}

func (c *chatController) SetVisibility(ctx *fiber.Ctx) error {
	actor, err := serverutils.CurrentActor(ctx)
	if err != nil {
		return err
	}
	roomId, err := uuidParam(ctx, "id")
	if err != nil {
		return err
	}

	var req dto.SetVisibilityRequest
	if err := parseBody(ctx, &req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.SetVisibility(ctx.UserContext(), roomId, actor.UserId, *req.Hidden)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success update chat room visibility", res))
}

func (c *chatController) DeleteRoom(ctx *fiber.Ctx) error {
	actor, err := serverutils.CurrentActor(ctx)
	if err != nil {
		return err
	}
	roomId, err := uuidParam(ctx, "id")
	if err != nil {
		return err
	}

	if err := c.service.DeleteRoom(ctx.UserContext(), roomId, actor); err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse[any]("Success delete chat room", nil))
}

func (c *chatController) ListMessages(ctx *fiber.Ctx) error {
	actor, err := serverutils.CurrentActor(ctx)
	if err != nil {
		return err
	}
	roomId, err := uuidParam(ctx, "chatRoomId")
	if err != nil {
		return err
	}

	res, err := c.service.ListMessages(ctx.UserContext(), actor, roomId)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get messages", res))
}

func (c *chatController) SendMessage(ctx *fiber.Ctx) error {
	actor, err := serverutils.CurrentActor(ctx)
	if err != nil {
		return err
	}
	roomId, err := uuidParam(ctx, "chatRoomId")
	if err != nil {
		return err
	}

	var req dto.SendMessageRequest
	if err := parseBody(ctx, &req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.SendMessage(ctx.UserContext(), actor.UserId, roomId, &req)
	if err != nil {
		return err
	}

	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Success send message", res))
}
