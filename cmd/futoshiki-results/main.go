package main

import "futoshiki-results/internal/app"

func main() {
	app.Run()
}
