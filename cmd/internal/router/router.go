package router

import (
	"net/http"
	"pawsclinic/cmd/internal/routes"
	"pawsclinic/cmd/internal/utils/apierror"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/time/rate"
)

const serviceName = "pawsclinic"

// Allows the Tailwind CDN used by the website.
const contentSecurityPolicy = "default-src 'self'; " +
	"script-src 'self' https://cdn.tailwindcss.com; " +
	"style-src 'self' 'unsafe-inline' https://cdn.tailwindcss.com; " +
	"img-src 'self' data: https:; " +
	"connect-src 'self'; " +
	"font-src 'self' https: data:; " +
	"media-src 'self' https:; " +
	"object-src 'none'; " +
	"frame-ancestors 'self'"

type Options struct {
	Appointments routes.AppointmentService
	Admin        routes.AdminService
	Gate         routes.AdminGate

	// RateLimit is the number of /api requests allowed per client IP per
	// minute. Zero disables limiting.
	RateLimit    int
	BodyLimit    string
	AllowOrigins []string

	// Development serves the website from WebDir; otherwise "/" redirects
	// to PagesURL.
	Development bool
	WebDir      string
	PagesURL    string
}

func New(opts Options) *echo.Echo {
	e := echo.New()
	e.HideBanner = true

	e.Use(middleware.Recover())
	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{Generator: uuid.NewString}))
	e.Use(middleware.Logger())
	e.Use(echo.WrapMiddleware(func(next http.Handler) http.Handler {
		return otelhttp.NewHandler(next, serviceName)
	}))
	e.Use(middleware.SecureWithConfig(middleware.SecureConfig{
		XSSProtection:         "0",
		ContentTypeNosniff:    "nosniff",
		XFrameOptions:         "SAMEORIGIN",
		ReferrerPolicy:        "no-referrer",
		ContentSecurityPolicy: contentSecurityPolicy,
	}))

	origins := opts.AllowOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: origins,
		AllowMethods: []string{http.MethodPost, http.MethodGet, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderContentType, routes.HeaderAdminSecret},
	}))
	if opts.BodyLimit != "" {
		e.Use(middleware.BodyLimit(opts.BodyLimit))
	}

	e.GET("/health", routes.Health)

	api := e.Group("/api")
	if opts.RateLimit > 0 {
		api.Use(rateLimiter(opts.RateLimit))
	}

	apptRoutes := routes.NewAppointmentDefault(opts.Appointments)
	adminRoutes := routes.NewAdminDefault(opts.Admin)

	api.POST("/send-sms", apptRoutes.SendSMS)
	api.GET("/appointments", adminRoutes.GetAppointments, routes.RequireAdmin(opts.Gate, true))
	api.GET("/appointments.csv", adminRoutes.ExportCSV, routes.RequireAdmin(opts.Gate, true))
	api.GET("/download-db", adminRoutes.DownloadDatabase, routes.RequireAdmin(opts.Gate, false))

	if opts.Development && opts.WebDir != "" {
		e.Static("/", opts.WebDir)
	} else if opts.PagesURL != "" {
		e.GET("/", func(c echo.Context) error {
			return c.Redirect(http.StatusFound, opts.PagesURL)
		})
	}

	return e
}

func rateLimiter(perMinute int) echo.MiddlewareFunc {
	store := middleware.NewRateLimiterMemoryStoreWithConfig(middleware.RateLimiterMemoryStoreConfig{
		Rate:      rate.Limit(float64(perMinute) / 60),
		Burst:     perMinute,
		ExpiresIn: 3 * time.Minute,
	})

	return middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
		Store: store,
		DenyHandler: func(c echo.Context, _ string, _ error) error {
			return c.JSON(apierror.TooManyRequestsError.Code(), apierror.TooManyRequestsError)
		},
		ErrorHandler: func(c echo.Context, _ error) error {
			return c.JSON(http.StatusForbidden, apierror.NewSimple(http.StatusForbidden, "Forbidden"))
		},
	})
}
