package seed

// SubjectSeed is one entry of the initial subject catalog.
type SubjectSeed struct {
	Code        string
	Name        string
	Description string
	Credits     int
}

// SubjectCatalog is the subject list a new installation starts with.
var SubjectCatalog = []SubjectSeed{
	{Code: "CS101", Name: "Introduction to Programming", Description: "Fundamental concepts of programming", Credits: 3},
	{Code: "CS201", Name: "Data Structures", Description: "Implementation and analysis of fundamental data structures", Credits: 4},
	{Code: "CS301", Name: "Database Systems", Description: "Design and implementation of database systems", Credits: 3},
	{Code: "CS302", Name: "Advanced Algorithms", Description: "Advanced algorithmic techniques and problem-solving strategies", Credits: 4},
	{Code: "CS401", Name: "Artificial Intelligence", Description: "Fundamentals of AI and machine learning", Credits: 4},
	{Code: "CS402", Name: "Web Development", Description: "Modern web development technologies and practices", Credits: 3},
	{Code: "CS403", Name: "Computer Networks", Description: "Principles and practices of computer networking", Credits: 3},
	{Code: "CS404", Name: "Software Engineering", Description: "Software development methodologies and project management", Credits: 4},
	{Code: "CS405", Name: "Cybersecurity", Description: "Security principles and practices in computing", Credits: 3},
	{Code: "CS406", Name: "Cloud Computing", Description: "Cloud architectures and distributed systems", Credits: 3},
}

// FacultySeed is one seeded faculty account bound to a catalog subject.
type FacultySeed struct {
	Username    string
	Email       string
	FirstName   string
	LastName    string
	SubjectCode string
}

// SeedFaculties lists the faculty accounts created by setup.
var SeedFaculties = []FacultySeed{
	{Username: "prof_wolverine", Email: "prof.wolverine@university.com", FirstName: "Logan", LastName: "Howlett", SubjectCode: "CS101"},
	{Username: "prof_cyclops", Email: "prof.cyclops@university.com", FirstName: "Scott", LastName: "Summers", SubjectCode: "CS201"},
	{Username: "prof_storm", Email: "prof.storm@university.com", FirstName: "Ororo", LastName: "Munroe", SubjectCode: "CS301"},
	{Username: "prof_beast", Email: "prof.beast@university.com", FirstName: "Henry", LastName: "McCoy", SubjectCode: "CS302"},
	{Username: "prof_jean", Email: "prof.jean@university.com", FirstName: "Jean", LastName: "Grey", SubjectCode: "CS401"},
	{Username: "prof_rogue", Email: "prof.rogue@university.com", FirstName: "Anna Marie", LastName: "D'Ancanto", SubjectCode: "CS402"},
	{Username: "prof_quicksilver", Email: "prof.quicksilver@university.com", FirstName: "Pietro", LastName: "Maximoff", SubjectCode: "CS403"},
	{Username: "prof_jubilee", Email: "prof.jubilee@university.com", FirstName: "Jubilation", LastName: "Lee", SubjectCode: "CS404"},
	{Username: "prof_ice_man", Email: "prof.ice.man@university.com", FirstName: "Bobby", LastName: "Drake", SubjectCode: "CS405"},
	{Username: "prof_mystique", Email: "prof.mystique@university.com", FirstName: "Raven", LastName: "Darkholme", SubjectCode: "CS406"},
}
