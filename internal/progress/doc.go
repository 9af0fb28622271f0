// Package progress carries user-visible progress reports from the download
// pipeline to whatever front end is running.
//
// Components never print directly. They receive a Func and report events
// as work happens (per fetch, per chapter, per image):
//
//	report := progress.Func(func(e progress.Event) { fmt.Println(e.Message) })
//	report.Emit(progress.LevelInfo, "start download", progress.Fields{"chapter": "Prologue"})
//
// The command line front end routes events into logrus with Logrus, the
// terminal UI renders them itself.
package progress
