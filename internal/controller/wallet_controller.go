package controller

import (
	"swappay-be/internal/pkg/serverutils"
	"swappay-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IWalletController interface {
	RegisterRoutes(r fiber.Router)
	GetBalance(ctx *fiber.Ctx) error
}

type walletController struct {
	ledger service.ILedgerService
}

func NewWalletController(ledger service.ILedgerService) IWalletController {
	return &walletController{ledger: ledger}
}

func (c *walletController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/wallet")
	h.Use(serverutils.JwtMiddleware)
	h.Get("/balance", c.GetBalance)
}

func (c *walletController) GetBalance(ctx *fiber.Ctx) error {
	actor, err := serverutils.CurrentActor(ctx)
	if err != nil {
		return err
	}

	res, err := c.ledger.GetBalance(ctx.UserContext(), actor.UserId)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get balance", res))
}
