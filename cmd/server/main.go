package main

import "licgate/internal/app"

// @title           LicGate API
// @version         1.0
// @description     Сервис активации лицензионных ключей: публичная проверка кода и админ-API выпуска.
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	app.Run()
}
