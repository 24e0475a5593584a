// @title           Brain Bin API
// @version         1.0
// @description     Document knowledge base with question answering over uploaded files.
// @license.name    MIT
// @license.url     https://opensource.org/licenses/MIT
// @host            localhost:8000
// @BasePath        /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

package main

import (
	"brainbin/internal/app"
)

func main() {
	app.Run()
}
