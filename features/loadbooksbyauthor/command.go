package loadbooksbyauthor

import "github.com/AntonStoeckl/bookshelf-viewmodel/viewmodel"

const (
	commandType = "LoadBooksByAuthor"
)

// Command represents the intent to load the books of one author.
type Command struct {
	AuthorID viewmodel.AuthorIDInt
}

// CommandType returns the type identifier for this command, used for observability and routing.
func (c Command) CommandType() string {
	return commandType
}

// BuildCommand creates a new Command for the given author.
func BuildCommand(authorID viewmodel.AuthorIDInt) Command {
	return Command{AuthorID: authorID}
}
