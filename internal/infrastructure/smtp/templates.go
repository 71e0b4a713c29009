package smtp

import (
	"fmt"
	"time"
)

// OtpEmail builds the subject and HTML body for the verification-code email.
func OtpEmail(appName, code string, validity time.Duration) (subject, html string) {
	subject = "Verify your email - " + appName
	html = fmt.Sprintf(`<!DOCTYPE html>
<html lang="en">
<head>
	<meta charset="UTF-8">
	<meta name="viewport" content="width=device-width, initial-scale=1.0">
</head>
<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px;">
	<div style="background: linear-gradient(135deg, #667eea 0%%, #764ba2 100%%); padding: 30px; text-align: center; border-radius: 10px 10px 0 0;">
		<h1 style="color: white; margin: 0; font-size: 28px;">%s</h1>
	</div>
	<div style="background-color: #f9f9f9; padding: 30px; border-radius: 0 0 10px 10px; border: 1px solid #ddd; border-top: none;">
		<h2 style="color: #333; margin-top: 0;">Verify your email</h2>
		<p>Hello,</p>
		<p>Thank you for signing up for <strong>%s</strong>. To complete your registration, use the one-time code below:</p>
		<div style="background-color: #667eea; color: white; padding: 20px; text-align: center; font-size: 32px; font-weight: bold; letter-spacing: 8px; border-radius: 8px; margin: 25px 0;">
			%s
		</div>
		<p style="color: #666; font-size: 14px;"><strong>Please note:</strong></p>
		<ul style="color: #666; font-size: 14px;">
			<li>This code is valid for <strong>%d minutes</strong></li>
			<li>Never share this code with anyone</li>
			<li>If you did not request this code, you can safely ignore this email</li>
		</ul>
		<hr style="border: none; border-top: 1px solid #ddd; margin: 25px 0;">
		<p style="color: #999; font-size: 12px; text-align: center;">
			This message was sent automatically by %s. Please do not reply.
		</p>
	</div>
</body>
</html>`, appName, appName, code, int(validity.Minutes()), appName)
	return subject, html
}

// WelcomeEmail builds the subject and HTML body for the post-verification
// welcome email.
func WelcomeEmail(appName, displayName string) (subject, html string) {
	subject = "Welcome to " + appName
	html = fmt.Sprintf(`<!DOCTYPE html>
<html lang="en">
<head>
	<meta charset="UTF-8">
	<meta name="viewport" content="width=device-width, initial-scale=1.0">
</head>
<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px;">
	<div style="background: linear-gradient(135deg, #667eea 0%%, #764ba2 100%%); padding: 30px; text-align: center; border-radius: 10px 10px 0 0;">
		<h1 style="color: white; margin: 0; font-size: 28px;">%s</h1>
	</div>
	<div style="background-color: #f9f9f9; padding: 30px; border-radius: 0 0 10px 10px; border: 1px solid #ddd; border-top: none;">
		<h2 style="color: #333; margin-top: 0;">Welcome, %s!</h2>
		<p>Congratulations! Your account has been verified successfully.</p>
		<p>You can now:</p>
		<ul>
			<li>Sign in to your account</li>
			<li>Connect with friends</li>
			<li>Share your favorite moments</li>
			<li>Explore everything the platform has to offer</li>
		</ul>
		<hr style="border: none; border-top: 1px solid #ddd; margin: 25px 0;">
		<p style="color: #999; font-size: 12px; text-align: center;">
			This message was sent automatically by %s. Please do not reply.
		</p>
	</div>
</body>
</html>`, appName, displayName, appName)
	return subject, html
}
