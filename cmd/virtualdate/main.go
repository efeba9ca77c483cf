// Command virtualdate is a thin front end over the pattern/task/scheduler
// core: load a schedule file, build it against a window, validate it, or
// export it to iCalendar.
package main

func main() {
	Execute()
}
