package main

import (
	"github.com/stockwatch-tech/go-backend/internal/app"
)

func main() {
	app.Run()
}
