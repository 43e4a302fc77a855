package command

// Help shows available commands and options.
func Help() {
	println(`authproxy usage:

authproxy [global options] <cmd> [options]

global options:

	-f		authproxy hcl configuration file, defaults to ./authproxy.hcl if present
	-log-format	format option for json or common logs
	-log-level	log level, e.g. debug, info or error
	-log-pretty	pretty print json logs

available commands:

	run		starts the server
	verify		verifies the configuration without starting the server
	version		prints the current version
	help		shows this message

Run "authproxy <cmd> -h" for the options of a command.
`)
}
