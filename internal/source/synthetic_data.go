package source

var firstNames = []string{
	"John", "Sarah", "Mike", "Emily", "David", "Lisa", "James", "Jennifer",
	"Robert", "Maria", "William", "Patricia", "Richard", "Linda", "Thomas",
}

var lastNames = []string{
	"Smith", "Johnson", "Williams", "Brown", "Jones", "Garcia", "Miller",
	"Davis", "Rodriguez", "Martinez", "Hernandez", "Lopez", "Gonzalez",
}

var streetNames = []string{
	"Main St", "Oak Ave", "Maple Dr", "Cedar Ln", "Pine St", "Elm Rd",
	"Washington Blvd", "Lincoln Ave", "Park Place", "Highland Dr",
}

// complaintReviews are communication-themed complaints.
var complaintReviews = []string{
	"Called three times and never got a callback. Terrible communication!",
	"Left multiple voicemails over two weeks. No response whatsoever.",
	"Scheduled an appointment but they never showed up. No call, no text, nothing.",
	"Tried reaching them for a week. Phone goes straight to voicemail.",
	"They said they'd call back with a quote. That was 3 weeks ago.",
	"Impossible to get in touch with. Emails go unanswered, calls aren't returned.",
	"Missed our scheduled appointment twice. Very unprofessional.",
	"Waited 2 hours past appointment time. No communication about the delay.",
	"Asked for an estimate a month ago. Still waiting for a response.",
	"Great work when they finally showed up, but getting them to respond is a nightmare.",
	"Communication is awful. Had to track them down just to get updates on my project.",
	"They don't answer phones or return calls. Very frustrating experience.",
	"Appointment was canceled last minute with no explanation. Never heard back.",
	"Sent 5 emails over 2 weeks. Zero response. Taking my business elsewhere.",
	"Nice people but absolutely terrible at returning phone calls.",
}

var praiseReviews = []string{
	"Excellent service! They arrived on time and did a great job.",
	"Very professional team. Would highly recommend to anyone.",
	"Fair pricing and quality work. Will use again.",
	"Quick response and efficient service. Very satisfied.",
	"Best in the area. Always reliable and communicative.",
	"They went above and beyond. Truly exceptional service.",
	"Prompt, professional, and reasonably priced. A+ experience.",
	"Called them in an emergency and they came right away. Lifesavers!",
	"Great experience from start to finish. Highly recommend.",
	"Quality work at a fair price. No complaints here.",
}

var (
	proSuffixes     = []string{"Solutions", "Experts", "Masters", "Plus"}
	qualityPrefixes = []string{"Quality", "Premier", "Elite", "Superior", "First Choice"}
	gradePrefixes   = []string{"A+", "AAA", "5 Star", "Ace"}
)
