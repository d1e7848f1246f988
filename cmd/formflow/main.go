// Command formflow runs, serves and inspects conditional forms.
package main

func main() {
	Execute()
}
