package conversation

// User-facing copy. The platform renders all of it; the bot only picks
// which line to send.
const (
	msgWelcome = "Welcome to Duet! 💕 Let's set up your profile so you can start rating cute couples and find your matches!"

	msgAskGender     = "First, what's your gender?"
	msgAskPreference = "What are you looking for?"
	msgAskPhoto      = "Great! Now please upload your profile photo 📸"
	msgRetryPhoto    = "Please upload an image for your profile photo 📸"
	msgAskSummary    = "Perfect! 📱 Now write a short summary about yourself (1-2 sentences):"
	msgRetrySummary  = "Please write a short text summary about yourself:"

	msgProfileComplete = "🎉 Profile complete! Welcome to Duet!\n\nCommands you can use:\n• Type 'View Couples' to rate couples\n• Type 'My Matches' to see your matches"

	msgNotEnoughProfiles = "Not enough profiles yet! Invite more friends to join Duet! 💕"
	msgRateCouple        = "Do you think this is a cute couple? 💕"
	msgThanksPositive    = "Thanks for the vote! ❤️"
	msgThanksNegative    = "Thanks for your honesty! 😊"
	msgSeeAnother        = "Want to see another couple?"

	msgNoMatches    = "No matches yet! Keep rating couples to find your perfect match! 💕\n\nType 'View Couples' to start rating!"
	msgMoreMatches  = "Want to rate more couples to find more matches?"

	msgCommandList = "Commands:\n• 'View Couples' - Rate couples\n• 'My Matches' - See your matches\n• 'Help' - Show this menu"
	msgHelp        = "🏠 Duet Dating App Help\n\n📝 Commands:\n• 'View Couples' - Rate random couples\n• 'My Matches' - See people you match with\n• 'Help' - Show this menu\n\n💡 How it works:\n1. Rate couples as cute or not\n2. When others vote you'd be cute with someone, they become your match!\n3. The more votes, the higher they rank in your matches!"

	msgApology = "Sorry, something went wrong. Please try again! 😅"
)
