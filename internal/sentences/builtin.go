// Package sentences provides the sentence pools used to build passages.
package sentences

var builtin = []string{
	"The quick brown fox jumps over the lazy dog.",
	"Hello world! This is a typing speed test application.",
	"Computer keyboards help us practice and improve our skills.",
	"Accuracy matters when measuring words per minute.",
	"Every challenge brings us to a new level of progress.",
	"Achievement comes through dedication and persistence.",
	"Master experts started as beginners with patience.",
	"Advanced intermediate professionals develop through practice.",
	"Programming and coding require software technology skills.",
	"Digital modern future innovation drives creative solutions.",
	"Problem solving helps us think, learn, and grow.",
	"Success comes from motivation and inspiration daily.",
	"Focus and concentration improve mindfulness and clarity.",
	"Typing speed tests help developers improve their skills.",
	"Practice makes perfect in every skill we learn.",
	"Technology advances through innovation and creativity.",
	"Learning new skills requires patience and dedication.",
	"Success is achieved through consistent practice and effort.",
	"Modern applications help users improve their productivity.",
	"Digital tools enhance our learning and development process.",
	"Professional developers use various programming languages daily.",
	"Creative solutions emerge from focused problem solving.",
	"Technology innovation drives modern software development.",
	"Practice and persistence lead to mastery of skills.",
	"Learning programming requires dedication and continuous effort.",
	"Digital transformation changes how we work and learn.",
	"Modern software development involves multiple technologies.",
	"Professional growth comes through continuous learning and practice.",
	"Innovation in technology creates new opportunities daily.",
	"Success in programming requires patience and consistent effort.",
}

// Builtin returns a copy of the built-in sentence pool.
func Builtin() []string {
	return append([]string(nil), builtin...)
}
