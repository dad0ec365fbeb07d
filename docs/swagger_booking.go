package docs

// @title           Ride Booking API
// @version         1.0
// @description     Passengers request rides, drivers accept and advance them. Live ride updates and driver positions are pushed over a WebSocket at /ws.

// @contact.name   API Support

// @license.name  Apache 2.0
// @license.url   http://www.apache.org/licenses/LICENSE-2.0.html

// @host      localhost:8080
// @BasePath  /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
