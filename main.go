package main

import "shortcutreport/internal/app"

func main() {
	app.Main()
}
