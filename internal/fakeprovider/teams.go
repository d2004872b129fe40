package fakeprovider

// Team is a franchise the generator schedules.
type Team struct {
	ID       int
	City     string
	NickName string
}

var teams = []Team{
	{ID: 50, City: "Arizona", NickName: "Cardinals"},
	{ID: 51, City: "Atlanta", NickName: "Falcons"},
	{ID: 52, City: "Buffalo", NickName: "Bills"},
	{ID: 53, City: "Carolina", NickName: "Panthers"},
	{ID: 54, City: "Chicago", NickName: "Bears"},
	{ID: 55, City: "Cincinnati", NickName: "Bengals"},
	{ID: 56, City: "Cleveland", NickName: "Browns"},
	{ID: 57, City: "Green Bay", NickName: "Packers"},
	{ID: 58, City: "Dallas", NickName: "Cowboys"},
	{ID: 59, City: "Baltimore", NickName: "Ravens"},
	{ID: 60, City: "Tennessee", NickName: "Titans"},
	{ID: 61, City: "Seattle", NickName: "Seahawks"},
	{ID: 62, City: "Denver", NickName: "Broncos"},
	{ID: 63, City: "Detroit", NickName: "Lions"},
	{ID: 64, City: "Houston", NickName: "Texans"},
	{ID: 65, City: "Kansas City", NickName: "Chiefs"},
	{ID: 66, City: "Indianapolis", NickName: "Colts"},
	{ID: 67, City: "Jacksonville", NickName: "Jaguars"},
	{ID: 68, City: "Las Vegas", NickName: "Raiders"},
	{ID: 69, City: "Los Angeles", NickName: "Chargers"},
	{ID: 70, City: "Los Angeles", NickName: "Rams"},
	{ID: 71, City: "Miami", NickName: "Dolphins"},
	{ID: 72, City: "Minnesota", NickName: "Vikings"},
	{ID: 73, City: "New England", NickName: "Patriots"},
	{ID: 74, City: "New Orleans", NickName: "Saints"},
	{ID: 75, City: "New York", NickName: "Giants"},
	{ID: 76, City: "New York", NickName: "Jets"},
	{ID: 77, City: "Philadelphia", NickName: "Eagles"},
	{ID: 78, City: "Pittsburgh", NickName: "Steelers"},
	{ID: 79, City: "San Francisco", NickName: "49ers"},
	{ID: 80, City: "Tampa Bay", NickName: "Buccaneers"},
	{ID: 81, City: "Washington", NickName: "Football Team"},
}
