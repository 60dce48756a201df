package main

import (
	"net/http"

	"github.com/bmizerany/pat"
	"github.com/justinas/alice"

	"imobilBack/internal/models"
)

func (app *application) routes() http.Handler {
	standardMiddleware := alice.New(app.recoverPanic, app.logRequest, secureHeaders, makeResponseJSON)
	authMiddleware := standardMiddleware.Append(app.requireAuth)

	mux := pat.New()

	// Users. Creation always needs a token; which roles the caller may
	// assign is decided inside the service.
	mux.Post("/user/sign_in", standardMiddleware.ThenFunc(app.userHandler.SignIn))
	mux.Post("/user/refresh_token", standardMiddleware.ThenFunc(app.userHandler.RefreshTokens))
	mux.Post("/user/request_reset", standardMiddleware.ThenFunc(app.userHandler.RequestPasswordReset))
	mux.Post("/user/reset_password", standardMiddleware.ThenFunc(app.userHandler.ResetPassword))
	mux.Get("/user/me", authMiddleware.ThenFunc(app.userHandler.Me))
	mux.Post("/user", authMiddleware.ThenFunc(app.userHandler.CreateUser))
	mux.Get("/user/:id", authMiddleware.ThenFunc(app.userHandler.GetUserByID))
	mux.Get("/user", authMiddleware.ThenFunc(app.userHandler.GetUsers))
	mux.Put("/user/:id", authMiddleware.ThenFunc(app.userHandler.UpdateUser))

	// Lookup catalogs. Reads are public, writes go through the role
	// check inside the service.
	app.referenceRoutes(mux, standardMiddleware, authMiddleware, "/locations", models.RefLocation, true)
	app.referenceRoutes(mux, standardMiddleware, authMiddleware, "/sectors", models.RefSector, true)
	app.referenceRoutes(mux, standardMiddleware, authMiddleware, "/property-types", models.RefPropertyType, true)
	app.referenceRoutes(mux, standardMiddleware, authMiddleware, "/conditions", models.RefCondition, true)
	app.referenceRoutes(mux, standardMiddleware, authMiddleware, "/heating-types", models.RefHeatingType, true)
	app.referenceRoutes(mux, standardMiddleware, authMiddleware, "/planning-types", models.RefPlanningType, true)
	app.referenceRoutes(mux, standardMiddleware, authMiddleware, "/construction-types", models.RefConstructionType, true)
	app.referenceRoutes(mux, standardMiddleware, authMiddleware, "/surface-types", models.RefSurfaceType, true)
	app.referenceRoutes(mux, standardMiddleware, authMiddleware, "/sale-types", models.RefSaleType, false)
	app.referenceRoutes(mux, standardMiddleware, authMiddleware, "/user-types", models.RefUserType, false)

	// Typed listing collections.
	app.listingRoutes(mux, standardMiddleware, authMiddleware, "/apartments", models.DetailApartment)
	app.listingRoutes(mux, standardMiddleware, authMiddleware, "/houses", models.DetailHouse)
	app.listingRoutes(mux, standardMiddleware, authMiddleware, "/lands", models.DetailLand)
	app.listingRoutes(mux, standardMiddleware, authMiddleware, "/commercial-spaces", models.DetailCommercialSpace)

	// Listing images as a nested collection.
	mux.Get("/listings/:listing_id/images", standardMiddleware.ThenFunc(app.imageHandler.ListImages))
	mux.Post("/listings/:listing_id/images", authMiddleware.ThenFunc(app.imageHandler.AddImage))
	mux.Del("/listings/:listing_id/images/:image_id", authMiddleware.ThenFunc(app.imageHandler.DeleteImage))

	// Contact messages.
	mux.Post("/messages", standardMiddleware.ThenFunc(app.messageHandler.CreateMessage))
	mux.Get("/messages/:id", authMiddleware.ThenFunc(app.messageHandler.GetMessageByID))
	mux.Get("/messages", authMiddleware.ThenFunc(app.messageHandler.GetMessages))
	mux.Del("/messages/:id", authMiddleware.ThenFunc(app.messageHandler.DeleteMessage))

	// Price-estimate requests.
	mux.Post("/requests", standardMiddleware.ThenFunc(app.requestHandler.CreateRequest))
	mux.Get("/requests/:id", authMiddleware.ThenFunc(app.requestHandler.GetRequestByID))
	mux.Get("/requests", authMiddleware.ThenFunc(app.requestHandler.GetRequests))
	mux.Put("/requests/:id", authMiddleware.ThenFunc(app.requestHandler.UpdateRequest))
	mux.Del("/requests/:id", authMiddleware.ThenFunc(app.requestHandler.DeleteRequest))

	return mux
}

// referenceRoutes registers one lookup catalog. Catalogs that only feed
// dropdowns stay read-only.
func (app *application) referenceRoutes(mux *pat.PatternServeMux, standard, auth alice.Chain, path string, kind models.ReferenceKind, writable bool) {
	mux.Get(path+"/:id", standard.Then(app.referenceHandler.Get(kind)))
	mux.Get(path, standard.Then(app.referenceHandler.List(kind)))
	if !writable {
		return
	}
	mux.Post(path, auth.Then(app.referenceHandler.Create(kind)))
	mux.Put(path+"/:id", auth.Then(app.referenceHandler.Update(kind)))
	mux.Del(path+"/:id", auth.Then(app.referenceHandler.Delete(kind)))
}

func (app *application) listingRoutes(mux *pat.PatternServeMux, standard, auth alice.Chain, path string, typ models.DetailType) {
	mux.Get(path+"/:listing_id", standard.Then(app.listingHandler.Get(typ)))
	mux.Get(path, standard.Then(app.listingHandler.List(typ)))
	mux.Post(path, auth.Then(app.listingHandler.Create(typ)))
	mux.Put(path+"/:listing_id", auth.Then(app.listingHandler.Update(typ)))
	mux.Del(path+"/:listing_id", auth.Then(app.listingHandler.Delete(typ)))
}
