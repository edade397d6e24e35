package safety

// tables holds the static protected-resource sets a Checker is seeded from.
// The sets themselves are never mutated; every Checker copies them at
// construction.
type tables struct {
	directories []string
	extensions  []string
	filenames   []string
	tempMarkers []string
}

func defaultTables(goos string) tables {
	if goos == "windows" {
		return windowsTables()
	}
	return unixTables()
}

// windowsTables lists the resources whose loss bricks or degrades a Windows
// install. Temp markers waive directory and extension protection for the
// well-known temporary locations nested under them.
func windowsTables() tables {
	return tables{
		directories: []string{
			`C:\Windows`,
			`C:\Windows\System32`,
			`C:\Windows\SysWOW64`,
			`C:\Program Files`,
			`C:\Program Files (x86)`,
			`C:\ProgramData`,
			`C:\Users`,
			`C:\$Recycle.Bin`,
			`C:\System Volume Information`,
			`C:\Recovery`,
			`C:\Boot`,
			`C:\PerfLogs`,
		},
		extensions: []string{
			".exe", ".dll", ".sys", ".drv", ".ocx", ".cpl",
			".msi", ".msm", ".msp", ".bat", ".cmd", ".ps1",
			".reg", ".inf", ".cat", ".cer", ".crt", ".key",
			".pfx", ".p12", ".p7b", ".p7c", ".p7m", ".p7s",
		},
		filenames: []string{
			"boot.ini", "ntldr", "ntdetect.com", "bootmgr",
			"bootmgr.efi", "bcd", "boot.sdi", "winload.exe",
			"winload.efi", "winresume.exe", "winresume.efi",
		},
		tempMarkers: []string{
			`\Temp\`,
			`\tmp\`,
			`\AppData\Local\Temp\`,
			`\AppData\Local\Microsoft\Windows\INetCache\`,
			`\AppData\Local\Microsoft\Windows\Temporary Internet Files\`,
			`\Windows\Temp\`,
			`\Windows\Prefetch\`,
			`\Windows\SoftwareDistribution\Download\`,
		},
	}
}

func unixTables() tables {
	return tables{
		directories: []string{
			"/etc",
			"/bin",
			"/sbin",
			"/usr",
			"/boot",
			"/lib",
			"/lib64",
			"/dev",
			"/proc",
			"/sys",
			"/var/lib",
		},
		extensions: []string{
			".so", ".ko", ".service", ".socket", ".mount",
			".pem", ".key", ".crt", ".cer", ".pfx", ".p12",
		},
		filenames: []string{
			"vmlinuz", "initrd.img", "fstab", "passwd", "shadow",
			"sudoers", "grub.cfg",
		},
		tempMarkers: []string{
			"/tmp/",
			"/var/tmp/",
			"/var/cache/",
			"/.cache/",
		},
	}
}
